package builtin

import (
	"testing"

	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/host"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"github.com/leapstack-labs/texfmt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"three", []string{"a", "b", "c"}, "a, b and c"},
		{"two", []string{"a", "b"}, "a and b"},
		{"only", []string{"only"}, "only"},
		{"empty", []string{}, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Join(tt.items, ", ", " and "))
		})
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"5-ff", "5ff."},
		{"5-f", "5f."},
		{"5-", "5ff."},
		{"3-4", "3--4"},
		{"3--4", "3--4"},
		{" 3 - 4 ", "3--4"},
		{"7", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Range(tt.in, "--", "f.", "ff."))
		})
	}
}

func TestItems(t *testing.T) {
	got, err := Items("a, b ,c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got, err = Items("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Items([]any{"x", 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "2"}, got)

	_, err = Items(3)
	assert.Error(t, err)
}

func newRegistry(t *testing.T, opts *config.Options) (*registry.Registry, *host.Buffer) {
	t.Helper()
	h := host.NewBuffer()
	r := registry.New(opts, h, testutil.NewTestLogger(t))
	_, err := Register(r)
	require.NoError(t, err)
	return r, h
}

func TestBuiltinClientIsHidden(t *testing.T) {
	r, h := newRegistry(t, config.Default())
	c, ok := r.Client(ClientName)
	require.True(t, ok)
	assert.Empty(t, c.Macros)
	assert.Empty(t, h.String())
	assert.Equal(t, 2, c.Public.Len())
}

func TestListJoin_Format(t *testing.T) {
	r, _ := newRegistry(t, config.Default())

	out, err := r.Format("list.join", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a, b and c", out)

	out, err = r.Format("list.join", "a,b,c", "last_sep={, and }")
	require.NoError(t, err)
	assert.Equal(t, "a, b, and c", out)

	out, err = r.Format("texfmt:list.join", []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, "only", out)

	_, err = r.Format("list.join", "a", "nope=1")
	assert.Error(t, err)
}

func TestListJoin_SepWithoutLastSepWarns(t *testing.T) {
	logger, logs := testutil.NewBufferLogger()
	r := registry.New(config.Default(), nil, logger)
	_, err := Register(r)
	require.NoError(t, err)

	out, err := r.Format("list.join", "a,b,c", "sep={; }")
	require.NoError(t, err)
	assert.Equal(t, "a; b; c", out)
	assert.Contains(t, logs.String(), "sep given without last_sep")
}

func TestListJoin_GlobalSeparators(t *testing.T) {
	opts := config.Default()
	opts.ListSep = " / "
	opts.ListLastSep = " & "
	r, _ := newRegistry(t, opts)

	out, err := r.Format("list.join", "a,b,c")
	require.NoError(t, err)
	assert.Equal(t, "a / b & c", out)
}

func TestDecodeOptions(t *testing.T) {
	var none joinOptions
	require.NoError(t, decodeOptions("list.join", nil, &none))
	assert.Nil(t, none.Sep)
	assert.Nil(t, none.LastSep)

	var set rangeOptions
	require.NoError(t, decodeOptions("range", options.Values{"sep": "-", "ffollow": ""}, &set))
	require.NotNil(t, set.Sep)
	assert.Equal(t, "-", *set.Sep)
	assert.Nil(t, set.Follow)
	require.NotNil(t, set.Ffollow)
	assert.Empty(t, or(set.Ffollow, "ff."))
	assert.Equal(t, "f.", or(set.Follow, "f."))

	err := decodeOptions("range", options.Values{"width": 3}, &set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "range options")
}

func TestRange_Format(t *testing.T) {
	r, _ := newRegistry(t, config.Default())

	out, err := r.Format("range", "5-ff")
	require.NoError(t, err)
	assert.Equal(t, "5ff.", out)

	out, err = r.Format("range", "3-4")
	require.NoError(t, err)
	assert.Equal(t, "3--4", out)

	out, err = r.Format("range", "3-4", "sep=-")
	require.NoError(t, err)
	assert.Equal(t, "3-4", out)
}

func TestPublishThroughConfiguration(t *testing.T) {
	r, h := newRegistry(t, config.Default())

	c, err := r.Register(&registry.Decl{
		Name:   "paper",
		Prefix: "p",
		Configuration: []registry.ConfigEntry{
			{Key: "list.join", Props: map[string]any{}},
			{Key: "texfmt:range", Props: map[string]any{"name": "pages", "color": "nocolor"}},
		},
	})
	require.NoError(t, err)

	want := []string{
		`\newcommand{\pListJoin}[2][]{\texfmtDispatch{paper:list.join}{default}{#1}{#2}}`,
		`\newcommand{\pages}[2][]{\texfmtDispatch{paper:range}{nocolor}{#1}{#2}}`,
	}
	assert.Equal(t, want, c.Macros)
	assert.Contains(t, h.String(), want[0])

	out, err := r.Dispatch("paper:list.join", "default", "", "a,b,c")
	require.NoError(t, err)
	assert.Equal(t, `\textcolor{blue}{a, b and c}`, out)

	out, err = r.Dispatch("paper:range", "nocolor", "", "5-ff")
	require.NoError(t, err)
	assert.Equal(t, "5ff.", out)

	f, err := r.Lookup("paper:list.join")
	require.NoError(t, err)
	assert.Equal(t, "% Joins a comma-separated list, with a distinct last separator.\n\\pListJoin[options]{items}",
		f.Docstring(r.Options(), nil))
}
