package namespace

import (
	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
	"github.com/leapstack-labs/texfmt/internal/formatter"
)

// Tree is a formatter tree guarded by an optional namespace declaration.
type Tree struct {
	root   *Subtree
	decl   Decl
	strict bool
	count  int
}

// NewTree returns an empty tree. decl may be nil.
func NewTree(decl Decl, strict bool) *Tree {
	return &Tree{root: NewSubtree(), decl: decl, strict: strict}
}

// Root returns the root subtree.
func (t *Tree) Root() *Subtree { return t.root }

// Strict reports whether undeclared paths are rejected.
func (t *Tree) Strict() bool { return t.strict }

// Len returns the number of formatters in the tree.
func (t *Tree) Len() int { return t.count }

// Lookup returns the formatter at key.
func (t *Tree) Lookup(key string) (*formatter.Formatter, bool) {
	n, ok := Find(t.root, key, false)
	if !ok {
		return nil, false
	}
	leaf, ok := n.(Leaf)
	if !ok {
		return nil, false
	}
	return leaf.F, true
}

// Insert places f at key, creating intermediate levels. The namespace
// declaration is checked first; existing entries are never replaced.
func (t *Tree) Insert(key string, f *formatter.Formatter) error {
	if key == "" {
		return diag.Configf("formatter key is empty")
	}
	if err := t.decl.Check(key, t.strict); err != nil {
		return err
	}

	// walk first so a failed insert leaves no empty levels behind
	var cur Node = t.root
	for _, seg := range Split(key) {
		sub, ok := cur.(*Subtree)
		if !ok {
			return diag.Config(errors.Wrapf(ErrPathConflict, "%q: a formatter sits above %q", key, seg))
		}
		next, ok := sub.Get(seg)
		if !ok {
			break
		}
		cur = next
	}
	if _, ok := cur.(Leaf); ok {
		return diag.Config(errors.Wrapf(ErrPathConflict, "%q is already defined", key))
	}

	parent, seg, _ := ParentAndLeaf(t.root, key, true)
	if existing, ok := parent.Get(seg); ok {
		if _, isSub := existing.(*Subtree); isSub {
			return diag.Config(errors.Wrapf(ErrPathConflict, "%q already holds other formatters", key))
		}
	}
	parent.Set(seg, Leaf{F: f})
	t.count++
	return nil
}

// Walk visits every formatter in insertion order.
func (t *Tree) Walk(fn func(key string, f *formatter.Formatter) error) error {
	return Walk(t.root, fn)
}
