package starlark

import (
	"testing"

	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestGoToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantStr string
	}{
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"float64", 3.5, "3.5"},
		{"bool", true, "True"},
		{"nil", nil, "None"},
		{"string slice", []string{"a", "b"}, `["a", "b"]`},
		{"mixed list", []any{"a", 1}, `["a", 1]`},
		{"map sorted", map[string]any{"b": 1, "a": "x"}, `{"a": "x", "b": 1}`},
		{"option values", options.Values{"sep": ";", "n": 2}, `{"n": 2, "sep": ";"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoToStarlark(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}

	_, err := GoToStarlark(struct{}{})
	assert.Error(t, err)
}

func TestToGo(t *testing.T) {
	dict := starlark.NewDict(2)
	require.NoError(t, dict.SetKey(starlark.String("k"), starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.None})))

	got, err := ToGo(dict)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": []any{int64(1), nil}}, got)

	got, err = ToGo(starlark.Tuple{starlark.String("a"), starlark.Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", false}, got)

	bad := starlark.NewDict(1)
	require.NoError(t, bad.SetKey(starlark.MakeInt(1), starlark.None))
	_, err = ToGo(bad)
	assert.Error(t, err)
}

func TestThreadPool(t *testing.T) {
	pool := NewThreadPool(1, nil)

	a := pool.Get("a")
	b := pool.Get("b")
	assert.Equal(t, "a", a.Name)
	assert.NotSame(t, a, b)

	pool.Put(a)
	pool.Put(b)
	assert.Equal(t, 1, pool.Idle(), "pool keeps at most one idle thread")

	c := pool.Get("c")
	assert.Same(t, a, c)
	assert.Equal(t, "c", c.Name)
	assert.Equal(t, 0, pool.Idle())
}
