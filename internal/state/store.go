// Package state keeps a searchable catalog of registered clients and their
// formatters in SQLite. The catalog is rebuilt by "texfmt index" and read
// by tooling that needs formatter metadata without loading client files.
package state

import "time"

// Catalog is the interface implemented by catalog stores.
type Catalog interface {
	Open(path string) error
	Close() error
	Migrate() error

	SaveClient(client *ClientRecord, formatters []*FormatterRecord) error
	DeleteClient(name string) error
	GetClients() ([]*ClientRecord, error)
	GetClient(name string) (*ClientRecord, error)
	GetFormatters(client string) ([]*FormatterRecord, error)
	GetFormatter(ref string) (*FormatterRecord, error)
	SearchFormatters(prefix string) ([]*FormatterRecord, error)
}

// ClientRecord is a registered client.
type ClientRecord struct {
	Name      string    `json:"name" yaml:"name"`
	Prefix    string    `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Color     string    `json:"color,omitempty" yaml:"color,omitempty"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	Position  int       `json:"position" yaml:"position"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// FormatterRecord is one formatter of a client. Home differs from Client
// for formatters published from another client.
type FormatterRecord struct {
	Client    string   `json:"client" yaml:"client"`
	Key       string   `json:"key" yaml:"key"`
	Local     bool     `json:"local,omitempty" yaml:"local,omitempty"`
	Home      string   `json:"home" yaml:"home"`
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	Args      []string `json:"args" yaml:"args"`
	OptIndex  int      `json:"opt_index,omitempty" yaml:"opt_index,omitempty"`
	Options   []string `json:"options,omitempty" yaml:"options,omitempty"`
	Color     string   `json:"color" yaml:"color"`
	Comment   string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Macro     string   `json:"macro,omitempty" yaml:"macro,omitempty"`
	Docstring string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Position  int      `json:"-" yaml:"-"`
}

// Ref returns the "client:key" reference of the record.
func (f *FormatterRecord) Ref() string { return f.Client + ":" + f.Key }
