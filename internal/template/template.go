// Package template implements flat field substitution over strings that
// carry <<<name>>> placeholders.
package template

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// OptionsField is the field name marking an optional key/value argument.
const OptionsField = "options"

// Template is an immutable, pre-tokenized template string.
type Template struct {
	source string
	tokens []Token
	fields []string
}

// Parse tokenizes src. It never fails: malformed delimiters are text.
func Parse(src string) *Template {
	t := &Template{source: src, tokens: NewLexer(src).Tokenize()}
	seen := make(map[string]bool)
	for _, tok := range t.tokens {
		if tok.Type == TokenField && !seen[tok.Value] {
			seen[tok.Value] = true
			t.fields = append(t.fields, tok.Value)
		}
	}
	return t
}

// Source returns the original template text.
func (t *Template) Source() string { return t.source }

// String implements fmt.Stringer.
func (t *Template) String() string { return t.source }

// Fields returns the distinct field names in order of first appearance.
func (t *Template) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// HasField reports whether name occurs as a field.
func (t *Template) HasField(name string) bool {
	for _, f := range t.fields {
		if f == name {
			return true
		}
	}
	return false
}

// Substitute replaces every field present in values. Fields without a value
// are left verbatim.
func (t *Template) Substitute(values map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(t.source))
	for _, tok := range t.tokens {
		switch tok.Type {
		case TokenText:
			sb.WriteString(tok.Value)
		case TokenField:
			if v, ok := values[tok.Value]; ok {
				sb.WriteString(v)
			} else {
				sb.WriteString(tok.Raw)
			}
		}
	}
	return sb.String()
}

// Fill substitutes a single bare value. With no fields the template is
// returned unchanged with ErrNoFields; with several, only the first field is
// filled and ErrAmbiguousFill is returned. The string is valid either way.
func (t *Template) Fill(value string) (string, error) {
	switch len(t.fields) {
	case 0:
		return t.source, errors.Wrapf(ErrNoFields, "template %q", t.source)
	case 1:
		return t.Substitute(map[string]string{t.fields[0]: value}), nil
	default:
		out := t.Substitute(map[string]string{t.fields[0]: value})
		return out, errors.Wrapf(ErrAmbiguousFill, "template %q, fields %v", t.source, t.fields)
	}
}

// Bind substitutes values positionally against names. Surplus names or
// values are ignored and reported with ErrBindMismatch.
func (t *Template) Bind(names, values []string) (string, error) {
	n := min(len(names), len(values))
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		m[names[i]] = values[i]
	}
	out := t.Substitute(m)
	if len(names) != len(values) {
		return out, errors.Wrapf(ErrBindMismatch, "%d names %v, %d values", len(names), names, len(values))
	}
	return out, nil
}

// Lint reports opening delimiters that do not start a well-formed field,
// such as "<<<first name>>>" or an unterminated "<<<x".
func (t *Template) Lint() []*Error {
	var errs []*Error
	for _, tok := range t.tokens {
		if tok.Type != TokenText {
			continue
		}
		line, col := tok.Pos.Line, tok.Pos.Column
		text := tok.Value
		for i := 0; i < len(text); {
			if strings.HasPrefix(text[i:], FieldOpen) {
				errs = append(errs, &Error{
					Pos: Position{Line: line, Column: col},
					Msg: "malformed field: " + snippet(text[i:]),
				})
				// skip the whole run of '<' so "<<<<" reports once
				for i < len(text) && text[i] == '<' {
					i++
					col++
				}
				continue
			}
			r, size := utf8.DecodeRuneInString(text[i:])
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i += size
		}
	}
	return errs
}

func snippet(s string) string {
	if end := strings.Index(s, FieldClose); end >= 0 && end < 40 {
		return s[:end+len(FieldClose)]
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 20 {
		s = s[:20] + "..."
	}
	return s
}
