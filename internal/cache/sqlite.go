package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Finding is one persisted audit issue for a chunk.
type Finding struct {
	ChunkID     string `json:"chunk_id"`
	Preset      string `json:"preset"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Status      string `json:"status"`
}

// ResultStore persists structured audit findings alongside digests, so a
// cache hit can replay previous results instead of re-auditing.
type ResultStore interface {
	SaveFindings(ctx context.Context, chunkID, preset string, findings []Finding) error
	FindingsFor(ctx context.Context, chunkID string) ([]Finding, error)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chunk_cache (
    chunk_id        TEXT PRIMARY KEY,
    hash            TEXT NOT NULL,
    last_audited_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_results (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id    TEXT NOT NULL,
    preset      TEXT NOT NULL,
    severity    TEXT,
    description TEXT,
    suggestion  TEXT,
    status      TEXT DEFAULT 'open',
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_results_chunk ON audit_results(chunk_id);
`

// SQLite is the default local backend: a digest Store plus the audit
// result store, in one file database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed initializes) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// WAL keeps concurrent readers cheap; SQLite still wants one writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Lookup(ctx context.Context, chunkID string) (string, bool, error) {
	var digest string
	err := s.db.QueryRowContext(ctx,
		"SELECT hash FROM chunk_cache WHERE chunk_id = ?", chunkID,
	).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}

func (s *SQLite) Record(ctx context.Context, chunkID, digest string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chunk_cache (chunk_id, hash, last_audited_at)
		VALUES (?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
		    hash = excluded.hash,
		    last_audited_at = excluded.last_audited_at`,
		chunkID, digest, now)
	return err
}

func (s *SQLite) Forget(ctx context.Context, prefix string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM chunk_cache WHERE chunk_id LIKE ? ESCAPE '\\'",
		escapeLike(prefix)+"%")
	return err
}

// SaveFindings replaces previous findings for the same chunk and preset
// before inserting, so re-audits never accumulate stale rows.
func (s *SQLite) SaveFindings(ctx context.Context, chunkID, preset string, findings []Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM audit_results WHERE chunk_id = ? AND preset = ?",
		chunkID, preset); err != nil {
		return err
	}

	for _, f := range findings {
		status := f.Status
		if status == "" {
			status = "open"
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audit_results (chunk_id, preset, severity, description, suggestion, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			chunkID, preset, f.Severity, f.Description, f.Suggestion, status); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLite) FindingsFor(ctx context.Context, chunkID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, preset, severity, description, suggestion, status
		FROM audit_results
		WHERE chunk_id = ?
		ORDER BY preset, severity`, chunkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.ChunkID, &f.Preset, &f.Severity, &f.Description, &f.Suggestion, &f.Status); err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

// escapeLike protects LIKE metacharacters in a chunk-ID prefix; paths may
// legitimately contain underscores.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
