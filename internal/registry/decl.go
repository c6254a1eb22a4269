package registry

import (
	"github.com/leapstack-labs/texfmt/internal/namespace"
	"github.com/leapstack-labs/texfmt/internal/options"
)

// Decl is a client declaration as produced by a loader.
type Decl struct {
	Name   string
	Prefix string
	Color  string
	Strict *bool // nil uses the global option

	Namespace     namespace.Decl
	Formatters    *RawTree
	Local         *RawTree
	Options       options.Schema
	Configuration []ConfigEntry

	// Source is the file the declaration came from, for diagnostics.
	Source string
}

// RawTree is an ordered, not yet normalized formatter tree.
type RawTree struct {
	Entries []RawEntry
}

// RawEntry is one key of a RawTree. Value is a template string, a
// formatter.Func, a *RawTree or a LeafSpec. Keys may contain dots.
type RawEntry struct {
	Key   string
	Value any
}

// LeafSpec is a formatter given with properties. F is a template string or
// a formatter.Func; Props are decoded into a formatter.Patch.
type LeafSpec struct {
	F     any
	Props map[string]any
}

// ConfigEntry overrides properties of an existing formatter after the
// client's trees are built. Key is "key" or "client:key".
type ConfigEntry struct {
	Key   string
	Props map[string]any
}

// Add appends an entry and returns t for chaining.
func (t *RawTree) Add(key string, value any) *RawTree {
	t.Entries = append(t.Entries, RawEntry{Key: key, Value: value})
	return t
}

// Tree builds a RawTree from alternating key, value arguments.
func Tree(kv ...any) *RawTree {
	t := &RawTree{}
	for i := 0; i+1 < len(kv); i += 2 {
		t.Add(kv[i].(string), kv[i+1])
	}
	return t
}
