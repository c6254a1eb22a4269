package namespace

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
)

// Decl is a declared namespace: the permitted segments at one level and,
// for each, the segments permitted below it. A segment with an empty Decl
// is terminal and may only hold a formatter.
type Decl map[string]Decl

// Terminal reports whether d declares no children.
func (d Decl) Terminal() bool { return len(d) == 0 }

// Keys returns the declared segments sorted.
func (d Decl) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeclFromValue converts a decoded declaration into a Decl. Maps nest;
// lists and single strings name terminal segments; nil is terminal.
// Dotted names expand, so ["list.join"] equals {"list": {"join": nil}}.
func DeclFromValue(v any) (Decl, error) {
	d := Decl{}
	if err := d.add(v, ""); err != nil {
		return nil, err
	}
	return d, nil
}

func (d Decl) add(v any, at string) error {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		d.ensure(x)
		return nil
	case []string:
		for _, s := range x {
			d.ensure(s)
		}
		return nil
	case []any:
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return diag.Configf("namespace %q: list entries must be strings, got %T", at, e)
			}
			d.ensure(s)
		}
		return nil
	case map[string]any:
		for k, sub := range x {
			if err := d.ensure(k).add(sub, join(at, k)); err != nil {
				return err
			}
		}
		return nil
	case Decl:
		for k, sub := range x {
			if err := d.ensure(k).add(sub, join(at, k)); err != nil {
				return err
			}
		}
		return nil
	case map[string]Decl:
		for k, sub := range x {
			if err := d.ensure(k).add(sub, join(at, k)); err != nil {
				return err
			}
		}
		return nil
	default:
		return diag.Configf("namespace %q: unsupported declaration %T", at, v)
	}
}

// ensure declares the dotted path key and returns the Decl below it.
func (d Decl) ensure(key string) Decl {
	cur := d
	for _, seg := range Split(key) {
		next, ok := cur[seg]
		if !ok || next == nil {
			next = Decl{}
			cur[seg] = next
		}
		cur = next
	}
	return cur
}

func join(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "." + seg
}

// Path-validation errors.
var (
	ErrUndeclaredPath = errors.New("path is not declared in the namespace")
	ErrLeafOnSubtree  = errors.New("namespace declares this path as a subtree, not a formatter")
	ErrSubtreeOnLeaf  = errors.New("namespace declares this path as a formatter, not a subtree")
	ErrPathConflict   = errors.New("path conflicts with an existing entry")
)

// Check validates that key may receive a formatter. A leaf where d declares
// a subtree is always an error. In strict mode undeclared segments and
// descending below a declared terminal are errors too; otherwise checking
// stops at the first undeclared segment.
func (d Decl) Check(key string, strict bool) error {
	segs := Split(key)
	cur := d
	for i, seg := range segs {
		here := strings.Join(segs[:i+1], ".")
		child, ok := cur[seg]
		if !ok {
			if !strict {
				return nil
			}
			return diag.Config(errors.WithHintf(
				errors.Wrapf(ErrUndeclaredPath, "%q (segment %q)", key, seg),
				"declared here: %s", declared(cur)))
		}
		last := i == len(segs)-1
		if last && !child.Terminal() {
			return diag.Config(errors.WithHintf(
				errors.Wrapf(ErrLeafOnSubtree, "%q", key),
				"declared below %s: %s", here, declared(child)))
		}
		if !last && child.Terminal() {
			if !strict {
				return nil
			}
			return diag.Config(errors.Wrapf(ErrSubtreeOnLeaf, "%q (at %q)", key, here))
		}
		cur = child
	}
	return nil
}

func declared(d Decl) string {
	if len(d) == 0 {
		return "(nothing)"
	}
	return strings.Join(d.Keys(), ", ")
}
