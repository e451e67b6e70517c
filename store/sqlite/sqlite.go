/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Alternative backend to the JSON documents: the same Repository contract
  per entity collection, persisted in a single database file. Useful when
  the data outgrows pretty-printed files or when ":memory:" is convenient
  in tests.

LAYOUT:
  One table per collection (people, products, orders). Records are stored
  as JSON documents alongside their id - the database is used as a durable
  document store, not a relational schema, so the two backends stay
  identical at the record level.

ID ASSIGNMENT:
  INTEGER PRIMARY KEY AUTOINCREMENT. sqlite_sequence remembers the highest
  id ever issued per table, which makes "ids are never reused after
  deletion" hold across process restarts, stronger than the JSON backend
  can manage from a bare record list.

CONCURRENCY:
  WAL mode, single writer. Same single-active-mutator assumption as the
  rest of the system.

USAGE:
  db, err := sqlite.New("./data/sales.db")
  defer db.Close()
  products := sqlite.NewCollection[sales.Product](db, "products")

SEE ALSO:
  - sales/repository.go: the contract Collection implements
  - store/jsonstore: the primary document backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/sales-engine/sales"
)

// DB wraps the shared database handle for all collections.
type DB struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &DB{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// migrate creates the collection tables.
func (s *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id  INTEGER PRIMARY KEY AUTOINCREMENT,
		doc TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS products (
		id  INTEGER PRIMARY KEY AUTOINCREMENT,
		doc TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS orders (
		id  INTEGER PRIMARY KEY AUTOINCREMENT,
		doc TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COLLECTION - One table, typed
// =============================================================================

// Collection implements sales.Repository over one table.
type Collection[T sales.Entity[T]] struct {
	db    *sql.DB
	table string
}

func NewCollection[T sales.Entity[T]](db *DB, table string) *Collection[T] {
	return &Collection[T]{db: db.db, table: table}
}

func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, c.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var record T
		if err := json.Unmarshal([]byte(doc), &record); err != nil {
			return nil, &sales.CorruptStoreError{Path: c.table, Cause: err}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (c *Collection[T]) Upsert(ctx context.Context, record T) (T, error) {
	var zero T

	if record.GetID() == 0 {
		// Let AUTOINCREMENT assign the id, then rewrite the document with
		// the id embedded so both backends store identical records.
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return zero, err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (doc) VALUES ('{}')`, c.table))
		if err != nil {
			return zero, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return zero, err
		}
		record = record.WithID(int(id))

		doc, err := json.Marshal(record)
		if err != nil {
			return zero, err
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET doc = ? WHERE id = ?`, c.table), string(doc), id); err != nil {
			return zero, err
		}
		return record, tx.Commit()
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return zero, err
	}
	// Permissive upsert: replace the match or insert under the given id.
	_, err = c.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, doc) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`, c.table),
		record.GetID(), string(doc))
	if err != nil {
		return zero, err
	}
	return record, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id int) (bool, error) {
	res, err := c.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c.table), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
