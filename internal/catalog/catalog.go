package catalog

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the user_version a fully migrated catalog carries.
//
//	0  tables from schema.sql only
//	1  idx_members_tree
const schemaVersion = 1

// ErrNotFound is returned by Load when no schema has the requested name.
var ErrNotFound = errors.New("schema not found")

// Config holds the connection settings of a catalog database. They are
// passed through the go-sqlite3 DSN so every pooled connection gets them.
type Config struct {
	// JournalMode is the SQLite journal_mode.
	JournalMode string
	// Synchronous is the SQLite synchronous level.
	Synchronous string
	// BusyTimeout bounds how long a writer waits for the lock.
	BusyTimeout time.Duration
}

// DefaultConfig is the configuration Open uses.
func DefaultConfig() Config {
	return Config{
		JournalMode: "WAL",
		Synchronous: "NORMAL",
		BusyTimeout: 5 * time.Second,
	}
}

// dsn renders path and cfg as a go-sqlite3 connection string. Foreign keys
// are always on: replacing a schema relies on cascading deletes.
func (cfg Config) dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", cfg.JournalMode)
	q.Set("_synchronous", cfg.Synchronous)
	q.Set("_busy_timeout", strconv.FormatInt(cfg.BusyTimeout.Milliseconds(), 10))
	q.Set("_foreign_keys", "on")
	return "file:" + path + "?" + q.Encode()
}

// Catalog is a SQLite-backed store of schema specs.
type Catalog struct {
	db *sql.DB
}

// Open opens the catalog at path with DefaultConfig, creating and
// migrating it as needed. Opening an existing catalog again is safe.
func Open(path string) (*Catalog, error) {
	return OpenConfig(path, DefaultConfig())
}

// OpenConfig is Open with explicit connection settings.
func OpenConfig(path string, cfg Config) (*Catalog, error) {
	db, err := sql.Open("sqlite3", cfg.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// One writer at a time; a single connection also keeps the reads of
	// one Load on the same snapshot as the preceding Save.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog %s: %w", path, err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// migrations[i] brings a catalog from user_version i to i+1.
var migrations = []func(*sql.Tx) error{
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_members_tree
			ON members(hierarchy_id, parent_id, ordinal)`)
		return err
	},
}

// migrate creates missing tables and runs every pending migration in one
// transaction, so a failed step leaves user_version untouched.
func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		if err := migrations[v](tx); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	if version < schemaVersion {
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("write user_version: %w", err)
		}
	}
	return tx.Commit()
}

// setting reads one PRAGMA value as text.
func (c *Catalog) setting(name string) (string, error) {
	var value string
	if err := c.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
