// Package index provides the SQLite catalog of library files, their records
// and the references between records, with optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path        TEXT PRIMARY KEY,
	schema      TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	entities    INTEGER NOT NULL DEFAULT 0,
	problems    TEXT NOT NULL DEFAULT '[]',
	checksum    TEXT NOT NULL DEFAULT '',
	keywords    TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entities (
	file      TEXT NOT NULL,
	id        INTEGER NOT NULL,
	keyword   TEXT NOT NULL,
	global_id TEXT NOT NULL DEFAULT '',
	name      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (file, id)
);

CREATE TABLE IF NOT EXISTS refs (
	file   TEXT NOT NULL,
	source INTEGER NOT NULL,
	target INTEGER NOT NULL,
	UNIQUE(file, source, target)
);

CREATE INDEX IF NOT EXISTS idx_entities_keyword ON entities(keyword);
CREATE INDEX IF NOT EXISTS idx_entities_global_id ON entities(global_id);
CREATE INDEX IF NOT EXISTS idx_refs_target ON refs(file, target);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
