package template

import (
	"strings"
	"unicode/utf8"
)

// Field delimiters. A field is FieldOpen, an identifier, FieldClose.
const (
	FieldOpen  = "<<<"
	FieldClose = ">>>"
)

// TokenType identifies the type of token.
type TokenType int

// TokenType constants for template token types.
const (
	TokenText  TokenType = iota // Literal text
	TokenField                  // <<<name>>>
	TokenEOF                    // End of input
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "TEXT"
	case TokenField:
		return "FIELD"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Position tracks source location for diagnostics.
type Position struct {
	Line   int
	Column int
}

// Token represents a lexical token.
// For fields Value is the field name and Raw the delimited source text.
type Token struct {
	Type  TokenType
	Value string
	Raw   string
	Pos   Position
}

// Lexer tokenizes a template string.
// Lexing never fails: a malformed delimiter is literal text.
type Lexer struct {
	input    string
	pos      int // current position in input
	line     int // current line number (1-based)
	col      int // current column number (1-based)
	lastLine int // line at start of current token
	lastCol  int // column at start of current token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Tokenize converts the input into a slice of tokens ending with TokenEOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) nextToken() Token {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.position()}
	}
	if name, width, ok := l.fieldAt(l.pos); ok {
		l.markStart()
		raw := l.input[l.pos : l.pos+width]
		l.pos += width
		l.col += width
		return Token{Type: TokenField, Value: name, Raw: raw, Pos: l.startPosition()}
	}
	return l.scanText()
}

// scanText scans literal text up to the next well-formed field or EOF.
func (l *Lexer) scanText() Token {
	l.markStart()
	start := l.pos
	l.advance()
	for l.pos < len(l.input) {
		if _, _, ok := l.fieldAt(l.pos); ok {
			break
		}
		l.advance()
	}
	text := l.input[start:l.pos]
	return Token{Type: TokenText, Value: text, Raw: text, Pos: l.startPosition()}
}

// fieldAt reports whether a complete field starts at offset i, returning the
// field name and the byte width of the delimited field.
func (l *Lexer) fieldAt(i int) (string, int, bool) {
	if !strings.HasPrefix(l.input[i:], FieldOpen) {
		return "", 0, false
	}
	j := i + len(FieldOpen)
	k := j
	for k < len(l.input) && isIdentByte(l.input[k], k == j) {
		k++
	}
	if k == j || !strings.HasPrefix(l.input[k:], FieldClose) {
		return "", 0, false
	}
	return l.input[j:k], k + len(FieldClose) - i, true
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}

// advance moves to the next rune, updating position tracking.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.lastLine = l.line
	l.lastCol = l.col
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *Lexer) startPosition() Position {
	return Position{Line: l.lastLine, Column: l.lastCol}
}
