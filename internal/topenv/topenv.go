// Package topenv implements the "top-level environment" collaborator
// named in the external interfaces (section 6): persistent storage
// behind TopLevel and StaticTopLevel slot writes. The scope decorator
// itself only assigns slot numbers; it never persists anything. A
// driver that wants top-level bindings to survive across separate
// compilations (a REPL, a build cache, successive `funxy check` runs
// against the same image) wires a Store in and calls Record after each
// successful compilation.
package topenv

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/funvibe/funxy/internal/ast"
)

// Store persists top-level and static-top-level binding slots to a
// SQLite-backed file. The scope decorator does not read the store, so
// each compilation still assigns its own slots; the store only keeps
// the first slot recorded for each name.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the top-level environment
// database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("topenv: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS bindings (
	name TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	slot INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("topenv: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts every top-level Define/DefineValues binding in
// program into the store, keyed by name, including those inside
// top-level Block nodes. A name that is already stored keeps its
// existing row, so its recorded slot stays the same across
// compilations of the same image.
func (s *Store) Record(program []ast.Node) error {
	for _, n := range program {
		switch d := n.(type) {
		case *ast.Block:
			if err := s.Record(d.Exprs); err != nil {
				return err
			}
		case *ast.Define:
			if err := s.insertIfAbsent(d.Name, d.Kind.String(), d.Slot); err != nil {
				return err
			}
		case *ast.DefineValues:
			for i, name := range d.Names {
				slot := -1
				if i < len(d.Slots) {
					slot = d.Slots[i]
				}
				if err := s.insertIfAbsent(name, d.Kind.String(), slot); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Store) insertIfAbsent(name, kind string, slot int) error {
	_, err := s.db.Exec(
		`INSERT INTO bindings(name, kind, slot) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, kind, slot,
	)
	return err
}

// Slot reports the persisted slot for name, if any.
func (s *Store) Slot(name string) (slot int, kind string, found bool, err error) {
	row := s.db.QueryRow(`SELECT slot, kind FROM bindings WHERE name = ?`, name)
	err = row.Scan(&slot, &kind)
	if err == sql.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	return slot, kind, true, nil
}

// Names returns every binding name currently persisted, in no
// particular order.
func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM bindings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
