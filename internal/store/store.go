package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/janus/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// ErrJournalFormat is returned by Open when the database was written in a
// journal format other than ir.IRVersion.
var ErrJournalFormat = errors.New("incompatible journal format")

// ErrForeignSchema is returned by Open when a janus table exists but lacks
// columns the journal reads and writes.
var ErrForeignSchema = errors.New("database is not a janus journal")

// migration brings a database to version. user_version holds the last
// version applied.
type migration struct {
	version int
	name    string
	apply   func(*sql.DB) error
}

var migrations = []migration{
	{1, "index events by pallet variant", func(db *sql.DB) error {
		_, err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_events_pallet_variant
			ON events(pallet, variant, seq)
		`)
		return err
	}},
	{2, "record journal format", func(db *sql.DB) error {
		_, err := db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('ir_version', ?)`, ir.IRVersion)
		return err
	}},
}

// schemaVersion is the user_version of a fully migrated journal.
func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// journalColumns lists, per table, the columns selected or inserted by name.
var journalColumns = map[string][]string{
	"storage": {"namespace", "slot", "value", "seq"},
	"calls":   {"id", "token", "module", "function", "args", "origin", "seq", "outcome", "runtime_version", "ir_version"},
	"events":  {"seq", "id", "call_id", "pallet", "pallet_index", "variant", "event_index", "payload"},
}

// Store holds the storage slots, the call journal and the event log of one
// runtime. Every slot write and event append goes through a Tx.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal at path (":memory:" for a throwaway one).
//
// A new database gets WAL mode, NORMAL sync, a 5s busy timeout and foreign keys,
// then the schema and every migration. An existing one must carry the janus
// tables and the current journal format, or Open fails with ErrForeignSchema
// or ErrJournalFormat.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: dispatch is single-writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	steps := []struct {
		what string
		fn   func(*sql.DB) error
	}{
		{"apply pragmas", applyPragmas},
		{"check schema", checkColumns},
		{"apply schema", applySchema},
		{"migrate", migrate},
		{"check journal format", checkFormat},
	}
	for _, step := range steps {
		if err := step.fn(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", step.what, err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection. Safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the connection for inspection and tests. Writes made through it
// bypass the journal's invariants.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

// checkColumns rejects databases whose journal tables differ from schema.sql.
// CREATE TABLE IF NOT EXISTS would leave such tables untouched. Absent tables
// pass; applySchema creates them.
func checkColumns(db *sql.DB) error {
	for _, table := range []string{"storage", "calls", "events"} {
		have, err := tableColumns(db, table)
		if err != nil {
			return err
		}
		if len(have) == 0 {
			continue
		}
		var missing []string
		for _, col := range journalColumns[table] {
			if !slices.Contains(have, col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: table %s lacks %s", ErrForeignSchema, table, strings.Join(missing, ", "))
		}
	}
	return nil
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > schemaVersion() {
		return fmt.Errorf("%w: schema version %d is newer than %d", ErrJournalFormat, version, schemaVersion())
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("v%d (%s): %w", m.version, m.name, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// checkFormat compares the recorded journal format with ir.IRVersion, the
// format call and event IDs are hashed in.
func checkFormat(db *sql.DB) error {
	var recorded string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'ir_version'`).Scan(&recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: no ir_version recorded", ErrJournalFormat)
	}
	if err != nil {
		return err
	}
	if recorded != ir.IRVersion {
		return fmt.Errorf("%w: journal is v%s, runtime reads v%s", ErrJournalFormat, recorded, ir.IRVersion)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
