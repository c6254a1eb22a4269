// Package macro renders LaTeX command definitions and documentation strings
// for formatters whose calling convention is already known.
package macro

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HiddenMarker starts the name of a formatter that never gets a command.
const HiddenMarker = "_"

// Spec is everything needed to render one command.
type Spec struct {
	Name     string   // command name, no backslash
	Ref      string   // dispatch reference, "client:key"
	Color    string   // declared color token
	Args     []string // logical argument names, options included
	OptIndex int      // 1-based position of the options argument, 0 if none
	Comment  string
	Dispatch string // dispatch command name, no backslash
}

// Mandatory returns the argument names excluding the optional slot.
func (s Spec) Mandatory() []string {
	out := make([]string, 0, len(s.Args))
	for i, a := range s.Args {
		if s.OptIndex > 0 && i == s.OptIndex-1 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Slots returns the number of parameters of the generated command.
func (s Spec) Slots() int {
	n := len(s.Mandatory())
	if s.OptIndex > 0 {
		n++
	}
	return n
}

// Definition renders the \newcommand declaration. The optional slot, when
// present, is #1 with an empty default and is passed to the dispatch
// command first; mandatory slots follow in argument order.
//
//	\newcommand{\Name}[2][]{\texfmtDispatch{c:key}{default}{#1}{#2}}
func Definition(s Spec) string {
	var sb strings.Builder
	sb.WriteString(`\newcommand{\`)
	sb.WriteString(s.Name)
	sb.WriteString("}")

	n := s.Slots()
	if n > 0 {
		sb.WriteString("[" + strconv.Itoa(n) + "]")
	}
	if s.OptIndex > 0 {
		sb.WriteString("[]")
	}

	sb.WriteString(`{\`)
	sb.WriteString(s.Dispatch)
	sb.WriteString("{" + s.Ref + "}")
	sb.WriteString("{" + s.Color + "}")
	for i := 1; i <= n; i++ {
		sb.WriteString("{#" + strconv.Itoa(i) + "}")
	}
	sb.WriteString("}")
	return sb.String()
}

// Docstring renders the invocation syntax of the command, preceded by the
// comment as "%" lines. Arguments present in samples are shown by value,
// the rest by name.
//
//	% Joins a list.
//	\myJoin[options]{items}
func Docstring(s Spec, samples map[string]string) string {
	var sb strings.Builder
	if c := strings.TrimSpace(s.Comment); c != "" {
		for _, line := range strings.Split(c, "\n") {
			sb.WriteString("% " + strings.TrimSpace(line) + "\n")
		}
	}
	sb.WriteString(`\` + s.Name)

	show := func(name string) string {
		if v, ok := samples[name]; ok {
			return v
		}
		return name
	}
	if s.OptIndex > 0 {
		sb.WriteString("[" + show(s.Args[s.OptIndex-1]) + "]")
	}
	for _, a := range s.Mandatory() {
		sb.WriteString("{" + show(a) + "}")
	}
	return sb.String()
}

// GenerateName builds a command name from prefix and a dot-separated key:
// parts are concatenated and every part after the first gets an upper-case
// initial. A key segment starting with HiddenMarker yields HiddenMarker.
//
//	GenerateName("my", "list.join") == "myListJoin"
//	GenerateName("", "list.join")   == "listJoin"
//	GenerateName("my", "_impl.x")   == "_"
func GenerateName(prefix, key string) string {
	var parts []string
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for _, seg := range strings.Split(key, ".") {
		if strings.HasPrefix(seg, HiddenMarker) {
			return HiddenMarker
		}
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	title := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		sb.WriteString(title.String(p))
	}
	return sb.String()
}

// IsHidden reports whether name marks a hidden formatter.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, HiddenMarker)
}
