package registry

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/diag"
	"github.com/leapstack-labs/texfmt/internal/formatter"
	"github.com/leapstack-labs/texfmt/internal/host"
	"github.com/leapstack-labs/texfmt/internal/namespace"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (*Registry, *host.Buffer) {
	t.Helper()
	h := host.NewBuffer()
	return New(config.Default(), h, testutil.NewTestLogger(t)), h
}

func upper() *formatter.GoFunc {
	return formatter.NewGoFunc("upper", func(_ formatter.Context, args []any) (string, error) {
		return strings.ToUpper(formatter.Stringify(args[0])), nil
	}, "text")
}

func TestRegister_EmitsMacros(t *testing.T) {
	r, h := newRegistry(t)

	c, err := r.Register(&Decl{
		Name:   "demo",
		Prefix: "demo",
		Formatters: Tree(
			"emph", `\emph{<<<text>>>}`,
			"list", Tree("upper", upper()),
			"_helper", "<<<x>>>",
		),
	})
	require.NoError(t, err)

	want := []string{
		`\newcommand{\demoEmph}[1]{\texfmtDispatch{demo:emph}{default}{#1}}`,
		`\newcommand{\demoListUpper}[1]{\texfmtDispatch{demo:list.upper}{default}{#1}}`,
	}
	assert.Equal(t, want, c.Macros)
	assert.Equal(t, strings.Join(want, "\n")+"\n", h.String())
	assert.Equal(t, 3, c.Public.Len())
	assert.Len(t, c.Formatters(), 3)
}

func TestRegister_NameErrors(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Register(&Decl{Name: "a"})
	require.NoError(t, err)

	for _, name := range []string{"", "a", "x:y", "x.y"} {
		_, err := r.Register(&Decl{Name: name})
		var regErr *RegistryError
		require.True(t, errors.As(err, &regErr), "name %q: got %v", name, err)
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegister_FailureLeavesRegistryUnchanged(t *testing.T) {
	r, h := newRegistry(t)
	_, err := r.Register(&Decl{
		Name:       "bad",
		Formatters: Tree("ok", "<<<a>>>", "ambiguous", "<<<a>>><<<b>>>"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, formatter.ErrAmbiguousTemplate))
	assert.True(t, diag.IsConfig(err))
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, h.String())
}

func TestRegister_LeafSpecProps(t *testing.T) {
	r, _ := newRegistry(t)
	c, err := r.Register(&Decl{
		Name: "c",
		Formatters: Tree(
			"name", LeafSpec{
				F:     "<<<last>>>, <<<first>>>",
				Props: map[string]any{"args": []string{"first", "last"}, "name": "fullName", "color": "red"},
			},
		),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`\newcommand{\fullName}[2]{\texfmtDispatch{c:name}{red}{#1}{#2}}`}, c.Macros)

	out, err := r.Format("name", "Donald", "Knuth")
	require.NoError(t, err)
	assert.Equal(t, "Knuth, Donald", out)
}

func TestRegister_StrictNamespace(t *testing.T) {
	r, _ := newRegistry(t)
	strict := true
	decl, err := namespace.DeclFromValue([]any{"cite.full"})
	require.NoError(t, err)

	_, err = r.Register(&Decl{
		Name:       "s",
		Strict:     &strict,
		Namespace:  decl,
		Formatters: Tree("cite.ful", "<<<k>>>"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, namespace.ErrUndeclaredPath))

	_, err = r.Register(&Decl{
		Name:       "s",
		Strict:     &strict,
		Namespace:  decl,
		Formatters: Tree("cite", Tree("full", "<<<k>>>")),
	})
	require.NoError(t, err)
}

func TestLookup_CrossClientShadowing(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Register(&Decl{Name: "A", Formatters: Tree("foo", "A")})
	require.NoError(t, err)
	_, err = r.Register(&Decl{Name: "B", Formatters: Tree("foo", "B")})
	require.NoError(t, err)

	f, err := r.Lookup("foo")
	require.NoError(t, err)
	assert.Equal(t, "B", f.Client())

	f, err = r.Lookup("A:foo")
	require.NoError(t, err)
	assert.Equal(t, "A", f.Client())

	_, err = r.Lookup("C:foo")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"registered clients: A, B"}, diag.Hints(err))

	_, err = r.Lookup("bar")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalTree(t *testing.T) {
	r, _ := newRegistry(t)
	callLocal := formatter.NewGoFunc("wrap", func(ctx formatter.Context, args []any) (string, error) {
		inner, err := ctx.Local("bracket", args[0])
		if err != nil {
			return "", err
		}
		return ctx.Format("emph", inner)
	}, "text")

	c, err := r.Register(&Decl{
		Name:       "c",
		Formatters: Tree("emph", `\emph{<<<t>>>}`, "wrap", callLocal),
		Local:      Tree("bracket", "[<<<t>>>]"),
	})
	require.NoError(t, err)
	assert.Len(t, c.Macros, 2, "local entries never emit commands")

	out, err := r.Format("wrap", "x")
	require.NoError(t, err)
	assert.Equal(t, `\emph{[x]}`, out)

	_, err = r.Lookup("bracket")
	assert.True(t, errors.Is(err, ErrNotFound), "local tree is not public")
}

func TestConfiguration_RenameAndPublish(t *testing.T) {
	r, h := newRegistry(t)
	_, err := r.Register(&Decl{
		Name:       "base",
		Prefix:     "_",
		Formatters: Tree("upper", upper()),
	})
	require.NoError(t, err)
	assert.Empty(t, h.String(), "hidden client emits nothing")

	c, err := r.Register(&Decl{
		Name:       "mine",
		Prefix:     "my",
		Formatters: Tree("emph", `\emph{<<<t>>>}`),
		Configuration: []ConfigEntry{
			{Key: "emph", Props: map[string]any{"name": "em", "comment": "Emphasis."}},
			{Key: "upper", Props: map[string]any{"color": "nocolor"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`\newcommand{\em}[1]{\texfmtDispatch{mine:emph}{default}{#1}}`,
		`\newcommand{\myUpper}[1]{\texfmtDispatch{mine:upper}{nocolor}{#1}}`,
	}, c.Macros)

	orig, err := r.Lookup("base:upper")
	require.NoError(t, err)
	assert.True(t, orig.IsHidden(), "publishing copies the entry")

	out, err := r.Dispatch("mine:upper", "nocolor", "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)
}

func TestConfiguration_RenameGeneratedCommand(t *testing.T) {
	for _, prop := range []string{"name", "color"} {
		t.Run(prop, func(t *testing.T) {
			r, h := newRegistry(t)
			_, err := r.Register(&Decl{Name: "a", Prefix: "a", Formatters: Tree("emph", `\emph{<<<t>>>}`)})
			require.NoError(t, err)
			before := h.String()

			_, err = r.Register(&Decl{
				Name:          "b",
				Prefix:        "b",
				Configuration: []ConfigEntry{{Key: "a:emph", Props: map[string]any{prop: "renamed"}}},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, formatter.ErrAlreadyMacroized))
			assert.True(t, diag.IsConfig(err))
			assert.Equal(t, before, h.String(), "no second command is emitted")
			_, ok := r.Client("b")
			assert.False(t, ok)
		})
	}

	r, _ := newRegistry(t)
	_, err := r.Register(&Decl{Name: "a", Prefix: "a", Formatters: Tree("emph", `\emph{<<<t>>>}`)})
	require.NoError(t, err)
	c, err := r.Register(&Decl{
		Name:          "b",
		Prefix:        "b",
		Configuration: []ConfigEntry{{Key: "a:emph", Props: map[string]any{"comment": "Emphasis."}}},
	})
	require.NoError(t, err, "publishing without renaming is allowed")
	assert.Equal(t, []string{`\newcommand{\bEmph}[1]{\texfmtDispatch{b:emph}{default}{#1}}`}, c.Macros)
}

func TestConfiguration_Unresolvable(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Register(&Decl{
		Name:          "c",
		Configuration: []ConfigEntry{{Key: "missing", Props: map[string]any{"name": "x"}}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, diag.IsConfig(err))
}

func TestClientOptions(t *testing.T) {
	r, _ := newRegistry(t)
	styled := formatter.NewGoFunc("styled", func(_ formatter.Context, args []any) (string, error) {
		style, _ := args[0].(options.Values)["style"].(string)
		return style, nil
	}, "options")

	_, err := r.Register(&Decl{
		Name:       "c",
		Options:    options.Schema{"style": {Type: options.Choice, Choices: []string{"a", "b"}, Default: "a"}},
		Formatters: Tree("styled", LeafSpec{F: styled, Props: map[string]any{"client_options": []string{"style"}}}),
	})
	require.NoError(t, err)

	out, err := r.Format("styled", "style=b")
	require.NoError(t, err)
	assert.Equal(t, "b", out)

	out, err = r.Format("styled")
	require.NoError(t, err)
	assert.Equal(t, "a", out)

	_, err = r.Register(&Decl{
		Name:       "d",
		Formatters: Tree("styled", LeafSpec{F: styled, Props: map[string]any{"client_options": []string{"style"}}}),
	})
	assert.True(t, errors.Is(err, options.ErrNoOptionProvider))
}

func TestDispatch_Color(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Register(&Decl{
		Name:       "c",
		Color:      "red",
		Formatters: Tree("emph", `\emph{<<<t>>>}`, "join", LeafSpec{F: "<<<a>>>/<<<options>>>"}),
	})
	require.NoError(t, err)

	out, err := r.Dispatch("c:emph", "default", "x")
	require.NoError(t, err)
	assert.Equal(t, `\textcolor{red}{\emph{x}}`, out)

	out, err = r.Dispatch("c:emph", "green", "x")
	require.NoError(t, err)
	assert.Equal(t, `\textcolor{green}{\emph{x}}`, out)

	out, err = r.Dispatch("c:join", "nocolor", "o", "a")
	require.NoError(t, err)
	assert.Equal(t, "a/o", out)

	opts := config.Default()
	opts.Color = false
	plain := New(opts, nil, nil)
	_, err = plain.Register(&Decl{Name: "c", Formatters: Tree("emph", `\emph{<<<t>>>}`)})
	require.NoError(t, err)
	out, err = plain.Dispatch("c:emph", "red", "x")
	require.NoError(t, err)
	assert.Equal(t, `\emph{x}`, out)
}

func TestWrite(t *testing.T) {
	r, h := newRegistry(t)
	_, err := r.Register(&Decl{Name: "c", Prefix: "_", Formatters: Tree("emph", `\emph{<<<t>>>}`)})
	require.NoError(t, err)

	require.NoError(t, r.Write("emph", "w"))
	assert.Equal(t, "\\emph{w}\n", h.String())
}

func TestDocstringsGeneratedAtRegistration(t *testing.T) {
	r, _ := newRegistry(t)
	c, err := r.Register(&Decl{Name: "c", Formatters: Tree("emph", `\emph{<<<t>>>}`)})
	require.NoError(t, err)
	f := c.Formatters()[0]
	assert.Equal(t, `\emph{t}`, f.Docstring(r.Options(), nil))
}

func TestSplitRef(t *testing.T) {
	c, k := SplitRef("a:b.c")
	assert.Equal(t, "a", c)
	assert.Equal(t, "b.c", k)
	c, k = SplitRef("b.c")
	assert.Empty(t, c)
	assert.Equal(t, "b.c", k)
}
