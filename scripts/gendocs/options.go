package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/texfmt/internal/config"
)

// optionDocs describes each engine option by koanf key.
var optionDocs = map[string]string{
	"default_color":    "Color substituted for the `default` token",
	"list_sep":         "Separator between items of list.join",
	"list_last_sep":    "Separator before the last item of list.join",
	"range_sep":        "Separator of a two-number range",
	"range_follow":     "Suffix for a range covering the next page",
	"range_ffollow":    "Suffix for an open-ended range",
	"color":            "Wrap formatter output in the resolved color",
	"selfdoc":          "Generate docstrings for public formatters",
	"strict":           "Reject formatters outside declared namespaces unless a client overrides it",
	"dispatch_command": "Document command that generated macros call",
}

// generateOptionsDocs writes options.md from the option defaults.
func generateOptionsDocs(outDir string) error {
	log.Printf("Generating options docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	defaults := config.DefaultMap("")
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := NewMarkdownWriter()
	w.Frontmatter("Options", "Engine options reference")
	w.GeneratedMarker()

	w.Header(1, "Options")
	w.Paragraph("Options live under the `options` key of texfmt.yaml and can be overridden with `TEXFMT_OPTIONS__<KEY>`.")

	var rows [][]string
	for _, k := range keys {
		rows = append(rows, []string{InlineCode(k), InlineCode(fmt.Sprint(defaults[k])), optionDocs[k]})
	}
	w.Table([]string{"Key", "Default", "Description"}, rows)

	filename := filepath.Join(outDir, "options.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated options.md")
	return nil
}
