// Package sqlstore provides the SQLite-backed persistent entry store.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"entry-catalog/entry"
)

//go:embed schema.sql
var schemaSQL string

// ensure implementation
var _ entry.Store = (*Store)(nil)

// Store persists entries in a SQLite database. Identities come from an
// AUTOINCREMENT primary key, so they stay strictly increasing per database
// even across deletes.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at dsn (":memory:" or a file
// path). Opening configures the connection but does not create the schema;
// call CreateSchema for that.
//
// The pool is limited to a single connection: SQLite supports one writer at
// a time, and an in-memory database lives and dies with its connection.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateSchema creates the entries and tag tables. A repeated call is a
// no-op here (IF NOT EXISTS), but that is this store's behavior, not part
// of the contract.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const entryColumns = "id, source, provider, file_id, instrument, path, size, observed_at, downloaded_at, starred"

// Insert persists a new entry and writes the assigned identity back into
// e.ID.
func (s *Store) Insert(ctx context.Context, e *entry.Entry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (source, provider, file_id, instrument, path, size, observed_at, downloaded_at, starred)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Source, e.Provider, e.FileID, e.Instrument, e.Path, e.Size,
		nullTime(e.ObservedAt), nullTime(e.DownloadedAt), e.Starred,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	e.ID = id
	return nil
}

// Update mutates the listed columns of a persisted entry. Column names
// originate from entry.Change constructors, never from caller data, so they
// can be spliced into the statement; values travel as bind parameters.
func (s *Store) Update(ctx context.Context, e *entry.Entry, changes ...entry.Change) error {
	if e.ID == 0 {
		return fmt.Errorf("update entry: %w", entry.ErrNoSuchEntry)
	}
	if len(changes) == 0 {
		_, err := s.SelectByID(ctx, e.ID)
		return err
	}
	set := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, ch := range changes {
		set = append(set, ch.Column()+" = ?")
		args = append(args, bindValue(ch.Value()))
	}
	args = append(args, e.ID)
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	return nil
}

// Delete removes a persisted entry; tag associations cascade.
func (s *Store) Delete(ctx context.Context, e *entry.Entry) error {
	if e.ID == 0 {
		return fmt.Errorf("delete entry: %w", entry.ErrNoSuchEntry)
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", e.ID)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	return nil
}

// SelectByID resolves an identity to its entry.
func (s *Store) SelectByID(ctx context.Context, id int64) (*entry.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, entry.ErrNoSuchEntry)
	}
	if err != nil {
		return nil, fmt.Errorf("select entry %d: %w", id, err)
	}
	return e, nil
}

// SelectAll returns every entry in id (insertion) order.
func (s *Store) SelectAll(ctx context.Context) ([]*entry.Entry, error) {
	return s.queryEntries(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY id")
}

// Select returns the entries matching f, in id order.
func (s *Store) Select(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
	query, args := compileFilter(f)
	return s.queryEntries(ctx, query, args...)
}

// Count returns the number of persisted entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// AddTag associates a tag name with a persisted entry, creating the tag row
// on first use.
func (s *Store) AddTag(ctx context.Context, e *entry.Entry, name string) error {
	if e.ID == 0 {
		return fmt.Errorf("tag entry: %w", entry.ErrNoSuchEntry)
	}
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM entries WHERE id = ?", e.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("tag entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	if err != nil {
		return fmt.Errorf("tag entry %d: %w", e.ID, err)
	}
	if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	var tagID int64
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tagID); err != nil {
		return fmt.Errorf("resolve tag %q: %w", name, err)
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)", e.ID, tagID)
	if err != nil {
		return fmt.Errorf("tag entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tag entry %d: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("tag %q: %w", name, entry.ErrEntryAlreadyTagged)
	}
	return nil
}

// RemoveTag drops a tag association.
func (s *Store) RemoveTag(ctx context.Context, e *entry.Entry, name string) error {
	if e.ID == 0 {
		return fmt.Errorf("untag entry: %w", entry.ErrNoSuchEntry)
	}
	var tagID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tagID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("tag %q: %w", name, entry.ErrNoSuchTag)
	}
	if err != nil {
		return fmt.Errorf("resolve tag %q: %w", name, err)
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entry_tags WHERE entry_id = ? AND tag_id = ?", e.ID, tagID)
	if err != nil {
		return fmt.Errorf("untag entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("untag entry %d: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("tag %q: %w", name, entry.ErrNoSuchTag)
	}
	return nil
}

// TagsOf returns the entry's tag names, sorted.
func (s *Store) TagsOf(ctx context.Context, e *entry.Entry) ([]string, error) {
	if e.ID == 0 {
		return nil, fmt.Errorf("tags of entry: %w", entry.ErrNoSuchEntry)
	}
	return s.queryNames(ctx, `
		SELECT t.name FROM tags t
		JOIN entry_tags et ON et.tag_id = t.id
		WHERE et.entry_id = ?
		ORDER BY t.name`, e.ID)
}

// TagNames returns every tag name associated with at least one entry,
// sorted.
func (s *Store) TagNames(ctx context.Context) ([]string, error) {
	return s.queryNames(ctx, `
		SELECT DISTINCT t.name FROM tags t
		JOIN entry_tags et ON et.tag_id = t.id
		ORDER BY t.name`)
}

// compileFilter builds the filtered SELECT. Column names are fixed; caller
// data only ever travels as bind parameters.
func compileFilter(f entry.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT e.id, e.source, e.provider, e.file_id, e.instrument, e.path, e.size, e.observed_at, e.downloaded_at, e.starred FROM entries e")

	var where []string
	var args []any
	if f.Tag != "" {
		b.WriteString(" JOIN entry_tags et ON et.entry_id = e.id JOIN tags t ON t.id = et.tag_id")
		where = append(where, "t.name = ?")
		args = append(args, f.Tag)
	}
	if f.Starred != nil {
		where = append(where, "e.starred = ?")
		args = append(args, *f.Starred)
	}
	if f.Source != "" {
		where = append(where, "e.source = ?")
		args = append(args, f.Source)
	}
	if f.Provider != "" {
		where = append(where, "e.provider = ?")
		args = append(args, f.Provider)
	}
	if f.Instrument != "" {
		where = append(where, "e.instrument = ?")
		args = append(args, f.Instrument)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY e.id")
	return b.String(), args
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	var out []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return out, nil
}

func (s *Store) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*entry.Entry, error) {
	var e entry.Entry
	var observed, downloaded sql.NullTime
	if err := sc.Scan(&e.ID, &e.Source, &e.Provider, &e.FileID, &e.Instrument,
		&e.Path, &e.Size, &observed, &downloaded, &e.Starred); err != nil {
		return nil, err
	}
	if observed.Valid {
		e.ObservedAt = observed.Time
	}
	if downloaded.Valid {
		e.DownloadedAt = downloaded.Time
	}
	return &e, nil
}

// nullTime maps the zero time to SQL NULL so unset timestamps round-trip.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// bindValue converts change values to their SQL representation.
func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return nullTime(t)
	}
	return v
}
