package sourcemap

import (
	"database/sql"
	"fmt"

	"github.com/riftlabs/lifetrace"

	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors the dense file/line tables an InMemory registry
// holds in memory, so a long-lived installation can reuse one location
// table across many runs of the same instrumented script instead of
// re-registering it every time.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS source_files (
	id   INTEGER PRIMARY KEY,
	path TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS source_lines (
	file_id INTEGER NOT NULL,
	iid     INTEGER NOT NULL,
	line    INTEGER NOT NULL,
	PRIMARY KEY (file_id, iid)
);
`

// SQLite is a database/sql + modernc.org/sqlite backed SourceMap. The
// caller must not share the *sql.DB with anything that writes
// concurrently during a run: Resolve issues a read query per call and
// assumes the table is stable for the duration of the analysis.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) a location registry at
// path, applying the same production-safe pragmas as the rest of the
// pack's SQLite call sites: WAL journaling and a busy timeout so a
// concurrent writer doesn't fail a reader outright.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sourcemap: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sourcemap: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sourcemap: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// RegisterFile inserts or updates the path for fileID.
func (s *SQLite) RegisterFile(fileID int32, path string) error {
	_, err := s.db.Exec(`INSERT INTO source_files (id, path) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET path = excluded.path`, fileID, path)
	if err != nil {
		return fmt.Errorf("sourcemap: register file %d: %w", fileID, err)
	}
	return nil
}

// RegisterLine inserts or updates the (fileID, iid) -> line mapping.
func (s *SQLite) RegisterLine(fileID, iid int32, line uint32) error {
	_, err := s.db.Exec(`INSERT INTO source_lines (file_id, iid, line) VALUES (?, ?, ?)
		ON CONFLICT(file_id, iid) DO UPDATE SET line = excluded.line`, fileID, iid, line)
	if err != nil {
		return fmt.Errorf("sourcemap: register line (%d,%d): %w", fileID, iid, err)
	}
	return nil
}

// Resolve renders id as "file:line", matching InMemory's format, or
// the same unresolved placeholder when the pair has no registered
// line.
func (s *SQLite) Resolve(id lifetrace.SourceLocID) string {
	var path string
	var line uint32
	err := s.db.QueryRow(`SELECT f.path, l.line FROM source_lines l
		JOIN source_files f ON f.id = l.file_id
		WHERE l.file_id = ? AND l.iid = ?`, id.FileID, id.IID).Scan(&path, &line)
	if err != nil {
		return fmt.Sprintf("<file %d, iid %d>", id.FileID, id.IID)
	}
	return fmt.Sprintf("%s:%d", path, line)
}
