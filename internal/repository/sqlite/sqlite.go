// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite, a pure Go translation of the SQLite
// C sources: no CGo, no C toolchain, works everywhere Go compiles. The
// database lives in a single file; tests use ":memory:" for a fresh
// throwaway instance per test.
//
// CONSTRAINT ERRORS:
// The store is the authority on uniqueness (users.email) and referential
// integrity (tasks.user_id RESTRICTs user deletion). The driver reports
// those failures with SQLite extended result codes; isUniqueViolation
// and isForeignKeyViolation detect them and each call site translates
// into the apperror taxonomy. Matching on result codes, not on error
// message text, keeps the mapping stable across driver versions.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements both repository
// interfaces. The server owns the lifecycle: New opens and migrates,
// Close runs at shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), applies the
// session pragmas and runs migrations.
//
// journal_mode=WAL lets reads proceed while a write is in flight, which
// matters once concurrent requests share the file. foreign_keys=ON is
// required for the tasks.user_id constraint to be enforced at all;
// SQLite ships with it off for backwards compatibility.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only prepares the pool; Ping forces a real connection so
	// a bad path fails here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL and releasing the
// file lock. Always deferred wherever New succeeds.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// safe to run on every startup.
//
// tasks.user_id is NOT NULL with ON DELETE RESTRICT: a task cannot be
// persisted without an owner, and a user owning tasks cannot be
// deleted. Both rules surface through constraintError.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'todo',
			user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_status  ON tasks(status);
	`)
	if err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is the driver's extended result
// code SQLITE_CONSTRAINT_UNIQUE (2067). The only UNIQUE index in the
// schema is users.email, so callers translate this to the
// duplicate-email conflict.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// isForeignKeyViolation reports SQLITE_CONSTRAINT_FOREIGNKEY (787). What
// it means depends on the statement: on DELETE FROM users it is the
// RESTRICT rule (user still owns tasks); on a task write it means the
// referenced user vanished between resolve and commit. The caller knows
// which, so the translation happens at each call site.
func isForeignKeyViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
