package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateName(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"my", "list.join", "myListJoin"},
		{"", "list.join", "listJoin"},
		{"", "range", "range"},
		{"x", "range", "xRange"},
		{"", "cite.fullCite", "citeFullCite"},
		{"my", "_impl.join", "_"},
		{"my", "list._join", "_"},
		{"_", "list.join", "_ListJoin"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateName(tt.prefix, tt.key))
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("_"))
	assert.True(t, IsHidden("_ListJoin"))
	assert.False(t, IsHidden("listJoin"))
}

func TestDefinition(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{
			name: "zero arguments",
			spec: Spec{Name: "tex", Ref: "c:tex", Color: "default", Dispatch: "fmt"},
			want: `\newcommand{\tex}{\fmt{c:tex}{default}}`,
		},
		{
			name: "one mandatory",
			spec: Spec{Name: "name", Ref: "c:name", Color: "red", Args: []string{"text"}, Dispatch: "fmt"},
			want: `\newcommand{\name}[1]{\fmt{c:name}{red}{#1}}`,
		},
		{
			name: "options first",
			spec: Spec{Name: "myListJoin", Ref: "c:list.join", Color: "default",
				Args: []string{"items", "options"}, OptIndex: 2, Dispatch: "fmt"},
			want: `\newcommand{\myListJoin}[2][]{\fmt{c:list.join}{default}{#1}{#2}}`,
		},
		{
			name: "options only",
			spec: Spec{Name: "opt", Ref: "c:opt", Color: "nocolor",
				Args: []string{"options"}, OptIndex: 1, Dispatch: "fmt"},
			want: `\newcommand{\opt}[1][]{\fmt{c:opt}{nocolor}{#1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Definition(tt.spec))
		})
	}
}

func TestSpec_Mandatory(t *testing.T) {
	s := Spec{Args: []string{"a", "options", "b"}, OptIndex: 2}
	assert.Equal(t, []string{"a", "b"}, s.Mandatory())
	assert.Equal(t, 3, s.Slots())

	s = Spec{Args: []string{"a", "b"}}
	assert.Equal(t, []string{"a", "b"}, s.Mandatory())
	assert.Equal(t, 2, s.Slots())
}

func TestDocstring(t *testing.T) {
	s := Spec{
		Name:     "myListJoin",
		Args:     []string{"items", "options"},
		OptIndex: 2,
		Comment:  "Joins a list.\nUses the package separators.",
	}

	assert.Equal(t,
		"% Joins a list.\n% Uses the package separators.\n\\myListJoin[options]{items}",
		Docstring(s, nil))

	assert.Equal(t,
		"% Joins a list.\n% Uses the package separators.\n\\myListJoin[sep=;]{a,b,c}",
		Docstring(s, map[string]string{"items": "a,b,c", "options": "sep=;"}))
}

func TestDocstring_NoComment(t *testing.T) {
	s := Spec{Name: "tex"}
	assert.Equal(t, `\tex`, Docstring(s, nil))
}
