package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
	"github.com/veracitylab/veracity/pkg/veracity/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and the verdict
// schema in place
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS verdicts (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	label INTEGER NOT NULL,
	probability REAL NOT NULL,
	confidence REAL NOT NULL,
	score REAL NOT NULL,
	token_count INTEGER NOT NULL,
	coverage REAL NOT NULL,
	top_terms TEXT NOT NULL DEFAULT '[]',
	model_name TEXT NOT NULL DEFAULT '',
	model_version TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verdicts_created_at ON verdicts(created_at);
CREATE INDEX IF NOT EXISTS idx_verdicts_source ON verdicts(source);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutVerdict inserts or updates a verdict
func (s *sqliteStore) PutVerdict(ctx context.Context, v store.Verdict) error {
	if v.ID == "" {
		return fmt.Errorf("%w: verdict has no id", internalerr.ErrInvalidInput)
	}

	termsJSON, err := json.Marshal(v.TopTerms)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO verdicts (id, source, title, label, probability, confidence, score,
	token_count, coverage, top_terms, model_name, model_version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	title=excluded.title,
	label=excluded.label,
	probability=excluded.probability,
	confidence=excluded.confidence,
	score=excluded.score,
	token_count=excluded.token_count,
	coverage=excluded.coverage,
	top_terms=excluded.top_terms,
	model_name=excluded.model_name,
	model_version=excluded.model_version,
	created_at=excluded.created_at;
`, v.ID, v.Source, v.Title, v.Label, v.Probability, v.Confidence, v.Score,
		v.TokenCount, v.Coverage, string(termsJSON), v.ModelName, v.ModelVersion,
		v.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// GetVerdict retrieves a verdict by ID
func (s *sqliteStore) GetVerdict(ctx context.Context, id string) (store.Verdict, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, source, title, label, probability, confidence, score,
	token_count, coverage, top_terms, model_name, model_version, created_at
FROM verdicts
WHERE id = ?;
`, id)

	v, err := scanVerdict(row)
	if err == sql.ErrNoRows {
		return store.Verdict{}, fmt.Errorf("verdict %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Verdict{}, err
	}
	return v, nil
}

// ListVerdicts retrieves verdicts newest first, optionally filtered by source
func (s *sqliteStore) ListVerdicts(ctx context.Context, opts store.ListOptions) ([]store.Verdict, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	query := `
SELECT id, source, title, label, probability, confidence, score,
	token_count, coverage, top_terms, model_name, model_version, created_at
FROM verdicts
`
	var args []any
	if opts.Source != "" {
		query += `WHERE source = ?
`
		args = append(args, opts.Source)
	}
	// ULIDs sort by creation time, so id breaks ties within one second.
	query += `ORDER BY created_at DESC, id DESC
LIMIT ?;`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verdicts []store.Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// Stats summarizes the stored verdicts in a single pass
func (s *sqliteStore) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(label), 0), COALESCE(AVG(confidence), 0)
FROM verdicts;
`).Scan(&st.Total, &st.Fabricated, &st.MeanConfidence)
	if err != nil {
		return store.Stats{}, err
	}
	st.Genuine = st.Total - st.Fabricated
	return st, nil
}

// PruneBefore deletes verdicts created before cutoff and reports how many
// rows went away
func (s *sqliteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM verdicts WHERE created_at < ?;`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerdict(r rowScanner) (store.Verdict, error) {
	var v store.Verdict
	var termsJSON, created string
	err := r.Scan(&v.ID, &v.Source, &v.Title, &v.Label, &v.Probability, &v.Confidence,
		&v.Score, &v.TokenCount, &v.Coverage, &termsJSON, &v.ModelName, &v.ModelVersion, &created)
	if err != nil {
		return store.Verdict{}, err
	}

	if termsJSON != "" {
		if err := json.Unmarshal([]byte(termsJSON), &v.TopTerms); err != nil {
			return store.Verdict{}, err
		}
	}
	if created != "" {
		if parsed, perr := time.Parse(time.RFC3339, created); perr == nil {
			v.CreatedAt = parsed
		}
	}
	return v, nil
}
