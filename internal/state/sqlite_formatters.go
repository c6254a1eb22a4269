package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const formatterColumns = `client, key, local, home, name, kind, args, opt_index, options,
	color, comment, macro, docstring, position`

// SaveClient stores a client and its formatters.
// This replaces any existing formatters for the client.
func (s *SQLiteStore) SaveClient(client *ClientRecord, formatters []*FormatterRecord) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = time.Now().UTC()
	}
	if _, err := tx.Exec(`
		INSERT INTO clients (name, prefix, color, source, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			prefix = excluded.prefix,
			color = excluded.color,
			source = excluded.source,
			position = excluded.position,
			updated_at = excluded.updated_at`,
		client.Name, client.Prefix, client.Color, client.Source, client.Position, client.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM formatters WHERE client = ?`, client.Name); err != nil {
		return fmt.Errorf("failed to delete old formatters: %w", err)
	}

	for i, f := range formatters {
		argsJSON, err := ArgsToJSON(f.Args)
		if err != nil {
			return err
		}
		optionsJSON, err := ArgsToJSON(f.Options)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO formatters (`+formatterColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			client.Name, f.Key, boolToInt(f.Local), f.Home, f.Name, f.Kind, argsJSON, f.OptIndex,
			optionsJSON, f.Color, nullableString(f.Comment), nullableString(f.Macro),
			nullableString(f.Docstring), i,
		); err != nil {
			return fmt.Errorf("failed to insert formatter %s: %w", f.Key, err)
		}
	}

	return tx.Commit()
}

// DeleteClient deletes a client and all its formatters.
func (s *SQLiteStore) DeleteClient(name string) error {
	if s.db == nil {
		return errNotOpened
	}
	_, err := s.db.Exec(`DELETE FROM clients WHERE name = ?`, name)
	return err
}

// GetClients returns all clients in registration order.
func (s *SQLiteStore) GetClients() ([]*ClientRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(`SELECT name, prefix, color, source, position, updated_at
		FROM clients ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get clients: %w", err)
	}
	defer rows.Close()

	var clients []*ClientRecord
	for rows.Next() {
		c := &ClientRecord{}
		if err := rows.Scan(&c.Name, &c.Prefix, &c.Color, &c.Source, &c.Position, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetClient returns a single client by name, or nil if it is unknown.
func (s *SQLiteStore) GetClient(name string) (*ClientRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	c := &ClientRecord{}
	err := s.db.QueryRow(`SELECT name, prefix, color, source, position, updated_at
		FROM clients WHERE name = ?`, name,
	).Scan(&c.Name, &c.Prefix, &c.Color, &c.Source, &c.Position, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// GetFormatters returns the formatters of a client in declaration order,
// public ones first.
func (s *SQLiteStore) GetFormatters(client string) ([]*FormatterRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	return s.queryFormatters(`SELECT `+formatterColumns+` FROM formatters
		WHERE client = ? ORDER BY local, position`, client)
}

// GetFormatter returns the public formatter named by a "client:key"
// reference, or nil if there is none.
func (s *SQLiteStore) GetFormatter(ref string) (*FormatterRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	client, key, ok := strings.Cut(ref, ":")
	if !ok {
		return nil, fmt.Errorf("invalid formatter reference %q: want client:key", ref)
	}

	found, err := s.queryFormatters(`SELECT `+formatterColumns+` FROM formatters
		WHERE client = ? AND key = ? AND local = 0`, client, key)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// SearchFormatters returns public formatters whose key or command name
// starts with prefix.
func (s *SQLiteStore) SearchFormatters(prefix string) ([]*FormatterRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	pattern := escapeLike(prefix) + "%"
	return s.queryFormatters(`SELECT f.client, f.key, f.local, f.home, f.name, f.kind, f.args,
		f.opt_index, f.options, f.color, f.comment, f.macro, f.docstring, f.position
		FROM formatters f JOIN clients c ON c.name = f.client
		WHERE f.local = 0 AND (f.key LIKE ? ESCAPE '\' OR f.name LIKE ? ESCAPE '\')
		ORDER BY c.position, f.position`, pattern, pattern)
}

func (s *SQLiteStore) queryFormatters(query string, args ...any) ([]*FormatterRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get formatters: %w", err)
	}
	defer rows.Close()

	var out []*FormatterRecord
	for rows.Next() {
		f := &FormatterRecord{}
		var local int
		var argsJSON, optionsJSON string
		var comment, macro, docstring *string
		if err := rows.Scan(&f.Client, &f.Key, &local, &f.Home, &f.Name, &f.Kind, &argsJSON,
			&f.OptIndex, &optionsJSON, &f.Color, &comment, &macro, &docstring, &f.Position); err != nil {
			return nil, fmt.Errorf("failed to scan formatter: %w", err)
		}
		f.Local = local != 0
		f.Args = ArgsFromJSON(argsJSON)
		f.Options = ArgsFromJSON(optionsJSON)
		f.Comment = derefString(comment)
		f.Macro = derefString(macro)
		f.Docstring = derefString(docstring)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ArgsToJSON converts a list of names to a JSON string.
func ArgsToJSON(args []string) (string, error) {
	if len(args) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to marshal args: %w", err)
	}
	return string(data), nil
}

// ArgsFromJSON parses a JSON array of names. Malformed input yields nil.
func ArgsFromJSON(s string) []string {
	var args []string
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil
	}
	return args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
