// Package host is the boundary with the document processor: the write
// primitive and color wrapping.
package host

import (
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Writer receives rendered text for the output stream.
type Writer interface {
	Write(text string) error
	Colorize(color, text string) string
}

// LaTeX writes to an io.Writer and colors with \textcolor.
type LaTeX struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLaTeX returns a host writing to out.
func NewLaTeX(out io.Writer) *LaTeX {
	return &LaTeX{out: out}
}

// Write writes text followed by a newline unless it already ends in one.
func (h *LaTeX) Write(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.out == nil {
		return errors.New("host output is not set")
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(h.out, text); err != nil {
		return errors.Wrap(err, "writing to host output")
	}
	return nil
}

// Colorize wraps text as \textcolor{color}{text}.
func (h *LaTeX) Colorize(color, text string) string {
	return `\textcolor{` + color + `}{` + text + `}`
}

// Buffer is an in-memory host, used for tests and for commands that
// collect output before printing.
type Buffer struct {
	LaTeX
	sb strings.Builder
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.out = &b.sb
	return b
}

// String returns everything written so far.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}
