package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/ifcstep/internal/apperr"
	"github.com/starford/ifcstep/internal/models"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path        string
	Schema      string
	Name        string
	Description string
	Entities    int
	Problems    []string
	Checksum    string
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Name    string
	Snippet string
}

// EntityQuery filters FindEntities. Empty fields match everything; Name
// matches as a case-insensitive substring.
type EntityQuery struct {
	File     string
	Keyword  string
	GlobalID string
	Name     string
	Limit    int
}

// UpsertFile replaces a file row together with its entities, references and
// FTS entry in one transaction.
func (db *DB) UpsertFile(f FileRow, entities []models.Entity, refs []models.Ref) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if f.Problems == nil {
		f.Problems = []string{}
	}
	problemsJSON, _ := json.Marshal(f.Problems)
	keywords, body := searchText(entities)

	_, err = tx.Exec(`
		INSERT INTO files (path, schema, name, description, entities, problems, checksum, keywords, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			schema      = excluded.schema,
			name        = excluded.name,
			description = excluded.description,
			entities    = excluded.entities,
			problems    = excluded.problems,
			checksum    = excluded.checksum,
			keywords    = excluded.keywords,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, f.Path, f.Schema, f.Name, f.Description, f.Entities, string(problemsJSON), f.Checksum,
		strings.Join(keywords, " "), body, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, f.Path, f.Name, body, keywords); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM entities WHERE file = ?`, f.Path)
	_, _ = tx.Exec(`DELETE FROM refs WHERE file = ?`, f.Path)
	if len(entities) > 0 {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO entities (file, id, keyword, global_id, name) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare entity insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entities {
			if _, err := stmt.Exec(f.Path, e.ID, e.Keyword, e.GlobalID, e.Name); err != nil {
				return fmt.Errorf("index: insert entity: %w", err)
			}
		}
	}
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO refs (file, source, target) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range refs {
			if _, err := stmt.Exec(f.Path, r.Source, r.Target); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
	}

	return tx.Commit()
}

// searchText returns the distinct keywords and the entity names of a file.
func searchText(entities []models.Entity) ([]string, string) {
	seen := make(map[string]struct{})
	var keywords, names []string
	for _, e := range entities {
		if _, ok := seen[e.Keyword]; !ok && e.Keyword != "" {
			seen[e.Keyword] = struct{}{}
			keywords = append(keywords, e.Keyword)
		}
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	sort.Strings(keywords)
	return keywords, strings.Join(names, "\n")
}

// DeleteFile removes a file with its entities, references and FTS entry.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM refs WHERE file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM entities WHERE file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

const fileColumns = `path, schema, name, description, entities, problems, checksum, updated_at`

func scanFile(row interface{ Scan(...any) error }) (*FileRow, error) {
	var f FileRow
	var problems string
	if err := row.Scan(&f.Path, &f.Schema, &f.Name, &f.Description, &f.Entities, &problems, &f.Checksum, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(problems), &f.Problems); err != nil {
		return nil, fmt.Errorf("index: problems of %s: %w", f.Path, err)
	}
	return &f, nil
}

// GetFile returns the catalogued file at path.
func (db *DB) GetFile(path string) (*FileRow, error) {
	f, err := scanFile(db.conn.QueryRow(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: file %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get file: %w", err)
	}
	return f, nil
}

// ListFiles returns one page of files ordered by path, optionally limited to
// one schema, and the total number of matching files.
func (db *DB) ListFiles(limit, offset int, schema string) ([]FileRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := "", []any{}
	if schema != "" {
		where = ` WHERE schema = ?`
		args = append(args, schema)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count files: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+fileColumns+` FROM files`+where+` ORDER BY path LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *f)
	}
	return out, total, rows.Err()
}

// FindEntities returns catalogued records matching q, ordered by file and id.
func (db *DB) FindEntities(q EntityQuery) ([]models.Entity, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	var conds []string
	var args []any
	if q.File != "" {
		conds = append(conds, `file = ?`)
		args = append(args, q.File)
	}
	if q.Keyword != "" {
		conds = append(conds, `keyword = ?`)
		args = append(args, strings.ToUpper(q.Keyword))
	}
	if q.GlobalID != "" {
		conds = append(conds, `global_id = ?`)
		args = append(args, q.GlobalID)
	}
	if q.Name != "" {
		conds = append(conds, `name LIKE ?`)
		args = append(args, "%"+q.Name+"%")
	}
	query := `SELECT file, id, keyword, global_id, name FROM entities`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY file, id LIMIT ?`
	args = append(args, q.Limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: find entities: %w", err)
	}
	defer rows.Close()

	var out []models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.File, &e.ID, &e.Keyword, &e.GlobalID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllPaths returns every catalogued file path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every catalogued file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Referrers returns the ids of records in path that reference id.
func (db *DB) Referrers(path string, id uint64) ([]uint64, error) {
	rows, err := db.conn.Query(`SELECT source FROM refs WHERE file = ? AND target = ? ORDER BY source`, path, id)
	if err != nil {
		return nil, fmt.Errorf("index: referrers: %w", err)
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var s uint64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
