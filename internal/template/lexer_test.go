package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_PlainText(t *testing.T) {
	input := `\textbf{bold}`
	tokens := NewLexer(input).Tokenize()

	require.Len(t, tokens, 2, "expected 2 tokens") // TEXT + EOF

	assert.Equal(t, TokenText, tokens[0].Type, "expected TEXT")
	assert.Equal(t, input, tokens[0].Value, "expected input value")
	assert.Equal(t, TokenEOF, tokens[1].Type, "expected EOF")
}

func TestLexer_Fields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []struct {
			typ TokenType
			val string
		}
	}{
		{
			name:  "single field",
			input: `\emph{<<<text>>>}`,
			expected: []struct {
				typ TokenType
				val string
			}{
				{TokenText, `\emph{`},
				{TokenField, "text"},
				{TokenText, "}"},
				{TokenEOF, ""},
			},
		},
		{
			name:  "adjacent fields",
			input: "<<<a>>><<<b>>>",
			expected: []struct {
				typ TokenType
				val string
			}{
				{TokenField, "a"},
				{TokenField, "b"},
				{TokenEOF, ""},
			},
		},
		{
			name:  "extra opening bracket is text",
			input: "<<<<name>>>",
			expected: []struct {
				typ TokenType
				val string
			}{
				{TokenText, "<"},
				{TokenField, "name"},
				{TokenEOF, ""},
			},
		},
		{
			name:  "space inside delimiters is text",
			input: "<<<first name>>>",
			expected: []struct {
				typ TokenType
				val string
			}{
				{TokenText, "<<<first name>>>"},
				{TokenEOF, ""},
			},
		},
		{
			name:  "digit cannot start a field",
			input: "<<<1x>>>",
			expected: []struct {
				typ TokenType
				val string
			}{
				{TokenText, "<<<1x>>>"},
				{TokenEOF, ""},
			},
		},
		{
			name:  "unterminated field",
			input: "a <<<b",
			expected: []struct {
				typ TokenType
				val string
			}{
				{TokenText, "a <<<b"},
				{TokenEOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NewLexer(tt.input).Tokenize()
			require.Len(t, tokens, len(tt.expected), "wrong number of tokens")
			for i, exp := range tt.expected {
				assert.Equal(t, exp.typ, tokens[i].Type, "token[%d] type", i)
				if exp.typ != TokenEOF {
					assert.Equal(t, exp.val, tokens[i].Value, "token[%d] value", i)
				}
			}
		})
	}
}

func TestLexer_RawKeepsDelimiters(t *testing.T) {
	tokens := NewLexer("<<<x>>>").Tokenize()
	require.Len(t, tokens, 2)
	assert.Equal(t, "<<<x>>>", tokens[0].Raw)
	assert.Equal(t, "x", tokens[0].Value)
}

func TestLexer_PositionTracking(t *testing.T) {
	input := "line1\n<<<a>>>\n  <<<b>>>"
	tokens := NewLexer(input).Tokenize()

	var fields []Token
	for _, tok := range tokens {
		if tok.Type == TokenField {
			fields = append(fields, tok)
		}
	}
	require.Len(t, fields, 2, "expected 2 fields")

	assert.Equal(t, Position{Line: 2, Column: 1}, fields[0].Pos)
	assert.Equal(t, Position{Line: 3, Column: 3}, fields[1].Pos)
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "TEXT", TokenText.String())
	assert.Equal(t, "FIELD", TokenField.String())
	assert.Equal(t, "EOF", TokenEOF.String())
	assert.Equal(t, "UNKNOWN", TokenType(99).String())
}
