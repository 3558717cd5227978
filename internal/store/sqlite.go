package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS extractions (
	id         TEXT PRIMARY KEY,
	image      TEXT NOT NULL,
	fields     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_extractions_image ON extractions(image);
CREATE INDEX IF NOT EXISTS idx_extractions_created_at ON extractions(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveExtraction(ctx context.Context, ex model.Extraction) (*ExtractionRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	fieldsJSON, err := json.Marshal(ex.Fields)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal fields")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, image, fields, created_at) VALUES (?, ?, ?, ?)`,
		id, ex.Image, string(fieldsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert extraction")
	}

	return &ExtractionRecord{
		ID:        id,
		Image:     ex.Image,
		Fields:    ex.Fields,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, exs []model.Extraction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, ex := range exs {
		fieldsJSON, err := json.Marshal(ex.Fields)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal fields")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO extractions (id, image, fields, created_at) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), ex.Image, string(fieldsJSON), now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert extraction %s", ex.Image)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit batch")
	}
	return len(exs), nil
}

func (s *SQLiteStore) GetExtraction(ctx context.Context, id string) (*ExtractionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, image, fields, created_at FROM extractions WHERE id = ?`,
		id,
	)
	return scanExtraction(row)
}

func (s *SQLiteStore) ListExtractions(ctx context.Context, filter ExtractionFilter) ([]ExtractionRecord, error) {
	query := `SELECT id, image, fields, created_at FROM extractions WHERE 1=1`
	var args []any

	if filter.Image != "" {
		query += ` AND image = ?`
		args = append(args, filter.Image)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list extractions")
	}
	defer rows.Close()

	var records []ExtractionRecord
	for rows.Next() {
		rec, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list extractions iterate")
}

func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM extractions WHERE created_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete extractions")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanExtraction(row scannable) (*ExtractionRecord, error) {
	var rec ExtractionRecord
	var fieldsJSON string

	err := row.Scan(&rec.ID, &rec.Image, &fieldsJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("extraction not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan extraction")
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal fields")
	}
	return &rec, nil
}
