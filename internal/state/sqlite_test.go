package state

import (
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/texfmt/internal/builtin"
	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"github.com/leapstack-labs/texfmt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	assert.ErrorIs(t, store.Migrate(), errNotOpened)
	_, err := store.GetClients()
	assert.ErrorIs(t, err, errNotOpened)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_MigrationVersion(t *testing.T) {
	store := setupTestStore(t)
	v, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store := NewSQLiteStore()
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())
	require.NoError(t, store.SaveClient(&ClientRecord{Name: "a"}, nil))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore()
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	require.NoError(t, reopened.Migrate(), "migrating twice is a no-op")

	clients, err := reopened.GetClients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "a", clients[0].Name)
	assert.False(t, clients[0].UpdatedAt.IsZero())
}

func TestSQLiteStore_SaveClientReplaces(t *testing.T) {
	store := setupTestStore(t)

	client := &ClientRecord{Name: "paper", Prefix: "p", Color: "teal", Source: "paper.star"}
	require.NoError(t, store.SaveClient(client, []*FormatterRecord{
		{Key: "cite", Home: "paper", Name: "pCite", Kind: "template", Args: []string{"key"}},
		{Key: "old", Home: "paper", Name: "pOld", Kind: "template"},
	}))
	require.NoError(t, store.SaveClient(client, []*FormatterRecord{
		{Key: "cite", Home: "paper", Name: "pCite", Kind: "template", Args: []string{"key"},
			Comment: "Citation.", Macro: `\newcommand{\pCite}[1]{x}`},
		{Key: "impl", Local: true, Home: "paper", Name: "impl", Kind: "function", Args: []string{"a", "b"}},
	}))

	formatters, err := store.GetFormatters("paper")
	require.NoError(t, err)
	require.Len(t, formatters, 2)
	assert.Equal(t, "cite", formatters[0].Key)
	assert.Equal(t, "Citation.", formatters[0].Comment)
	assert.Equal(t, []string{"key"}, formatters[0].Args)
	assert.True(t, formatters[1].Local)
	assert.Equal(t, []string{"a", "b"}, formatters[1].Args)

	got, err := store.GetClient("paper")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "teal", got.Color)

	missing, err := store.GetClient("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_GetFormatter(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveClient(&ClientRecord{Name: "a"}, []*FormatterRecord{
		{Key: "x.y", Home: "a", Name: "xY", Kind: "template"},
		{Key: "hid", Local: true, Home: "a", Name: "hid", Kind: "template"},
	}))

	f, err := store.GetFormatter("a:x.y")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "a:x.y", f.Ref())

	f, err = store.GetFormatter("a:hid")
	require.NoError(t, err)
	assert.Nil(t, f, "local formatters are not addressable")

	_, err = store.GetFormatter("x.y")
	assert.Error(t, err)
}

func TestSQLiteStore_DeleteClientCascades(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveClient(&ClientRecord{Name: "a"}, []*FormatterRecord{
		{Key: "k", Home: "a", Name: "k", Kind: "template"},
	}))
	require.NoError(t, store.DeleteClient("a"))

	formatters, err := store.GetFormatters("a")
	require.NoError(t, err)
	assert.Empty(t, formatters)
}

func TestSQLiteStore_SearchFormatters(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveClient(&ClientRecord{Name: "a", Position: 0}, []*FormatterRecord{
		{Key: "list.join", Home: "a", Name: "aListJoin", Kind: "function"},
		{Key: "range", Home: "a", Name: "aRange", Kind: "function"},
	}))
	require.NoError(t, store.SaveClient(&ClientRecord{Name: "b", Position: 1}, []*FormatterRecord{
		{Key: "list_x", Home: "b", Name: "bList", Kind: "template"},
	}))

	found, err := store.SearchFormatters("list")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a:list.join", found[0].Ref())
	assert.Equal(t, "b:list_x", found[1].Ref())

	found, err = store.SearchFormatters("list_")
	require.NoError(t, err)
	require.Len(t, found, 1, "underscore is matched literally")
	assert.Equal(t, "b:list_x", found[0].Ref())

	found, err = store.SearchFormatters("aR")
	require.NoError(t, err)
	require.Len(t, found, 1, "command names are searched too")
	assert.Equal(t, "a:range", found[0].Ref())
}

func TestArgsJSON(t *testing.T) {
	s, err := ArgsToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = ArgsToJSON([]string{"options", "x"})
	require.NoError(t, err)
	assert.Equal(t, `["options","x"]`, s)
	assert.Equal(t, []string{"options", "x"}, ArgsFromJSON(s))
	assert.Nil(t, ArgsFromJSON("not json"))
}

func TestIndexRegistry(t *testing.T) {
	r := registry.New(config.Default(), nil, testutil.NewTestLogger(t))
	_, err := builtin.Register(r)
	require.NoError(t, err)
	_, err = r.Register(&registry.Decl{
		Name:   "paper",
		Prefix: "p",
		Formatters: registry.Tree(
			"cite", `\cite{<<<key>>>}`,
			"_impl", "<<<x>>>",
		),
		Local:         registry.Tree("wrap", "[<<<x>>>]"),
		Configuration: []registry.ConfigEntry{{Key: "texfmt:list.join", Props: map[string]any{}}},
	})
	require.NoError(t, err)

	store := setupTestStore(t)
	n, err := IndexRegistry(store, r)
	require.NoError(t, err)
	assert.Positive(t, n)

	clients, err := store.GetClients()
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, builtin.ClientName, clients[0].Name)
	assert.Equal(t, "paper", clients[1].Name)

	formatters, err := store.GetFormatters("paper")
	require.NoError(t, err)
	byKey := make(map[string]*FormatterRecord)
	for _, f := range formatters {
		byKey[f.Key] = f
	}

	cite := byKey["cite"]
	require.NotNil(t, cite)
	assert.Equal(t, "pCite", cite.Name)
	assert.Equal(t, `\newcommand{\pCite}[1]{\texfmtDispatch{paper:cite}{default}{#1}}`, cite.Macro)
	assert.Equal(t, `\pCite{key}`, cite.Docstring)

	impl := byKey["_impl"]
	require.NotNil(t, impl)
	assert.Empty(t, impl.Macro, "hidden formatters have no command")

	wrap := byKey["wrap"]
	require.NotNil(t, wrap)
	assert.True(t, wrap.Local)

	join := byKey["list.join"]
	require.NotNil(t, join)
	assert.Equal(t, builtin.ClientName, join.Home)
	assert.Equal(t, "function", join.Kind)
	assert.Equal(t, []string{"items", "options"}, join.Args)
	assert.Equal(t, 2, join.OptIndex)
	assert.Equal(t, []string{"last_sep", "sep"}, join.Options)
}
