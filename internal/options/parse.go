// Package options parses and validates key/value option strings such as
// "sep={, }, last, width=3".
package options

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
)

// Pair is one raw entry of an option string.
type Pair struct {
	Key   string
	Value string
	Bare  bool // written without '='
}

// Parse splits s on top-level commas. Braces group a value so it may
// contain commas; one outer brace pair is stripped. Keys and unbraced values
// are trimmed of surrounding space.
func Parse(s string) ([]Pair, error) {
	var (
		pairs []Pair
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, diag.Config(errors.Newf("options %q: unbalanced '}' at offset %d", s, i))
			}
		case ',':
			if depth == 0 {
				p, ok, err := parseEntry(s[start:i])
				if err != nil {
					return nil, errors.Wrapf(err, "options %q", s)
				}
				if ok {
					pairs = append(pairs, p)
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, diag.Config(errors.Newf("options %q: unbalanced '{'", s))
	}
	p, ok, err := parseEntry(s[start:])
	if err != nil {
		return nil, errors.Wrapf(err, "options %q", s)
	}
	if ok {
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func parseEntry(entry string) (Pair, bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return Pair{}, false, nil
	}
	key, value, found := strings.Cut(entry, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return Pair{}, false, diag.Configf("entry %q has no key", entry)
	}
	if !found {
		return Pair{Key: key, Bare: true}, true, nil
	}
	return Pair{Key: key, Value: unbrace(value)}, true, nil
}

func unbrace(v string) string {
	t := strings.TrimSpace(v)
	if len(t) >= 2 && t[0] == '{' && t[len(t)-1] == '}' && balanced(t[1:len(t)-1]) {
		return t[1 : len(t)-1]
	}
	return t
}

// balanced reports whether braces in s close in order, so that "{a}{b}" is
// not mistaken for one braced group.
func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
