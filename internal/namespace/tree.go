// Package namespace implements the dot-addressed formatter tree and the
// declared namespaces that constrain it.
package namespace

import (
	"strings"

	"github.com/leapstack-labs/texfmt/internal/formatter"
)

// Node is either a Leaf or a *Subtree.
type Node interface {
	node()
}

// Leaf holds one formatter.
type Leaf struct {
	F *formatter.Formatter
}

// Subtree is an insertion-ordered mapping from path segment to node.
type Subtree struct {
	keys     []string
	children map[string]Node
}

func (Leaf) node()     {}
func (*Subtree) node() {}

// NewSubtree returns an empty subtree.
func NewSubtree() *Subtree {
	return &Subtree{children: make(map[string]Node)}
}

// Get returns the child for seg.
func (s *Subtree) Get(seg string) (Node, bool) {
	n, ok := s.children[seg]
	return n, ok
}

// Set adds or replaces the child for seg. New segments go last.
func (s *Subtree) Set(seg string, n Node) {
	if _, ok := s.children[seg]; !ok {
		s.keys = append(s.keys, seg)
	}
	s.children[seg] = n
}

// Keys returns the child segments in insertion order.
func (s *Subtree) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of direct children.
func (s *Subtree) Len() int { return len(s.keys) }

// Split splits a dot-separated key. The empty key has no segments.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}

// Find walks key from root. The empty key returns root. Missing levels are
// created as empty subtrees when create is set; otherwise the result is
// absent. A leaf cannot be walked through.
func Find(root *Subtree, key string, create bool) (Node, bool) {
	var cur Node = root
	for _, seg := range Split(key) {
		sub, ok := cur.(*Subtree)
		if !ok {
			return nil, false
		}
		next, ok := sub.Get(seg)
		if !ok {
			if !create {
				return nil, false
			}
			next = NewSubtree()
			sub.Set(seg, next)
		}
		cur = next
	}
	return cur, true
}

// ParentAndLeaf returns the subtree that holds the final segment of key,
// and that segment. It fails for the empty key and when an intermediate
// level is missing (without create) or is a leaf.
func ParentAndLeaf(root *Subtree, key string, create bool) (*Subtree, string, bool) {
	segs := Split(key)
	if len(segs) == 0 {
		return nil, "", false
	}
	parentKey := strings.Join(segs[:len(segs)-1], ".")
	n, ok := Find(root, parentKey, create)
	if !ok {
		return nil, "", false
	}
	sub, ok := n.(*Subtree)
	if !ok {
		return nil, "", false
	}
	return sub, segs[len(segs)-1], true
}

// Walk visits every leaf in insertion order, depth first. Keys are full
// dot paths. A non-nil error from fn stops the walk.
func Walk(root *Subtree, fn func(key string, f *formatter.Formatter) error) error {
	return walk(root, "", fn)
}

func walk(s *Subtree, prefix string, fn func(string, *formatter.Formatter) error) error {
	for _, seg := range s.keys {
		key := seg
		if prefix != "" {
			key = prefix + "." + seg
		}
		switch n := s.children[seg].(type) {
		case Leaf:
			if err := fn(key, n.F); err != nil {
				return err
			}
		case *Subtree:
			if err := walk(n, key, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
