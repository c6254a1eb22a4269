// Package loader discovers client declaration files and reads them into
// registry declarations. Clients are written in Starlark (*.star) or YAML
// (*.yaml, *.yml).
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/texfmt/internal/registry"
	starctx "github.com/leapstack-labs/texfmt/internal/starlark"
)

// Extensions lists the client file extensions Discover picks up.
var Extensions = []string{".star", ".yaml", ".yml"}

// Loader reads client files.
type Loader struct {
	dir    string
	files  []string
	pool   *starctx.ThreadPool
	logger *slog.Logger
}

// New creates a loader for dir. files names clients that are loaded first,
// in the given order; the rest of dir follows in lexical order.
func New(dir string, files []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		dir:    dir,
		files:  files,
		pool:   starctx.NewThreadPool(0, logger),
		logger: logger,
	}
}

// Discover returns the client files to load. A missing directory yields no
// files; explicitly listed files must exist.
func Discover(dir string, explicit []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, f := range explicit {
		p := f
		if !filepath.IsAbs(p) && dir != "" {
			p = filepath.Join(dir, p)
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("client file %s: %w", f, err)
		}
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	if dir == "" {
		return paths, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return paths, nil
		}
		return nil, fmt.Errorf("failed to access clients directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("clients path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan clients directory: %w", err)
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() || !isClientFile(e.Name()) {
			continue
		}
		p := filepath.Clean(filepath.Join(dir, e.Name()))
		if !seen[p] {
			seen[p] = true
			found = append(found, p)
		}
	}
	sort.Strings(found)
	return append(paths, found...), nil
}

func isClientFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Files returns the client files this loader would read.
func (l *Loader) Files() ([]string, error) {
	return Discover(l.dir, l.files)
}

// Load reads every discovered client file in order.
func (l *Loader) Load() ([]*registry.Decl, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}
	decls := make([]*registry.Decl, 0, len(files))
	for _, f := range files {
		decl, err := l.LoadFile(f)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// LoadFile reads one client file, choosing the format by extension.
func (l *Loader) LoadFile(path string) (*registry.Decl, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from Discover or the user
	if err != nil {
		return nil, &ParseError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	var decl *registry.Decl
	switch strings.ToLower(filepath.Ext(path)) {
	case ".star":
		decl, err = starctx.LoadClient(path, content, l.pool)
	case ".yaml", ".yml":
		decl, err = ParseYAML(path, content)
	default:
		return nil, &ParseError{File: path, Message: "unsupported client file type"}
	}
	if err != nil {
		return nil, err
	}

	if err := validateName(decl.Name); err != nil {
		return nil, &ParseError{File: path, Message: err.Error()}
	}
	l.logger.Debug("client file loaded", "file", path, "client", decl.Name)
	return decl, nil
}

// validateName checks that a client name is an identifier.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}
	for i, r := range name {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return fmt.Errorf("client name must start with letter or underscore: %s", name)
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' && r != '-' {
			return fmt.Errorf("client name contains invalid character: %s", name)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
