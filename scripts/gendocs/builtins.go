package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/texfmt/internal/builtin"
	"github.com/leapstack-labs/texfmt/internal/formatter"
	"github.com/leapstack-labs/texfmt/internal/registry"
)

// generateBuiltinDocs writes builtins.md, the reference of the formatters
// every client can publish from the built-in client.
func generateBuiltinDocs(outDir string) error {
	log.Printf("Generating built-in formatter docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	r := registry.New(nil, nil, nil)
	c, err := builtin.Register(r)
	if err != nil {
		return fmt.Errorf("failed to register built-in client: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Built-in Formatters", "Formatters provided by the texfmt client")
	w.GeneratedMarker()

	w.Header(1, "Built-in Formatters")
	w.Paragraph(fmt.Sprintf("The %s client is registered before any client file. Its entries are hidden: "+
		"publish them into a client namespace to get a document command.", InlineCode(builtin.ClientName)))

	for _, f := range c.Formatters() {
		if err := writeFormatterDoc(w, f); err != nil {
			return err
		}
	}

	filename := filepath.Join(outDir, "builtins.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated builtins.md")
	return nil
}

func writeFormatterDoc(w *MarkdownWriter, f *formatter.Formatter) error {
	args, _, err := f.Infer()
	if err != nil {
		return fmt.Errorf("%s: %w", f.Ref(), err)
	}

	w.Header(2, InlineCode(f.Key()))
	doc := f.Comment()
	if d, ok := f.Func().(formatter.Documented); ok && doc == "" {
		doc = d.Doc()
	}
	if doc != "" {
		w.Paragraph(doc)
	}
	w.Paragraph("Arguments: " + InlineCode(strings.Join(args, ", ")))

	schema := f.Schema()
	if len(schema) == 0 {
		return nil
	}
	var rows [][]string
	for _, key := range schema.Keys() {
		spec := schema[key]
		rows = append(rows, []string{InlineCode(key), string(spec.Type), cleanDescription(spec.Doc)})
	}
	w.Table([]string{"Option", "Type", "Description"}, rows)
	return nil
}
