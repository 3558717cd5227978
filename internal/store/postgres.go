package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fairwaylabs/shotlens/internal/db"
	"github.com/fairwaylabs/shotlens/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_extraction": `INSERT INTO extractions (id, image, fields, created_at) VALUES ($1, $2, $3, $4)`,
	"get_extraction":    `SELECT id, image, fields, created_at FROM extractions WHERE id = $1`,
	"delete_before":     `DELETE FROM extractions WHERE created_at < $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS extractions (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	image      TEXT NOT NULL,
	fields     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS extraction_fields (
	extraction_id TEXT NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	key           TEXT NOT NULL,
	value         TEXT,
	found         BOOLEAN NOT NULL,
	range_from    DOUBLE PRECISION,
	range_to      DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_extractions_image ON extractions(image);
CREATE INDEX IF NOT EXISTS idx_extractions_created_at ON extractions(created_at);
CREATE INDEX IF NOT EXISTS idx_extraction_fields_id ON extraction_fields(extraction_id);
CREATE INDEX IF NOT EXISTS idx_extraction_fields_name ON extraction_fields(name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) SaveExtraction(ctx context.Context, ex model.Extraction) (*ExtractionRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	fieldsJSON, err := json.Marshal(ex.Fields)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal fields")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO extractions (id, image, fields, created_at) VALUES ($1, $2, $3, $4)`,
		id, ex.Image, fieldsJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert extraction")
	}

	if _, err := db.CopyFrom(ctx, s.pool, "extraction_fields", fieldColumns, fieldRows(id, ex.Fields)); err != nil {
		return nil, err
	}

	return &ExtractionRecord{
		ID:        id,
		Image:     ex.Image,
		Fields:    ex.Fields,
		CreatedAt: now,
	}, nil
}

var fieldColumns = []string{"extraction_id", "name", "key", "value", "found", "range_from", "range_to"}

// fieldRows flattens resolved fields into extraction_fields rows for
// SQL-side analysis of per-field hit rates.
func fieldRows(extractionID string, fields []model.ResolvedField) [][]any {
	rows := make([][]any, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []any{extractionID, f.Name, f.Key, f.Value, f.Found, f.RangeFrom, f.RangeTo})
	}
	return rows
}

func (s *PostgresStore) SaveBatch(ctx context.Context, exs []model.Extraction) (int, error) {
	now := time.Now().UTC()

	extractionRows := make([][]any, 0, len(exs))
	var allFieldRows [][]any
	for _, ex := range exs {
		id := uuid.New().String()
		fieldsJSON, err := json.Marshal(ex.Fields)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal fields")
		}
		extractionRows = append(extractionRows, []any{id, ex.Image, fieldsJSON, now})
		allFieldRows = append(allFieldRows, fieldRows(id, ex.Fields)...)
	}

	n, err := db.CopyFrom(ctx, s.pool, "extractions", []string{"id", "image", "fields", "created_at"}, extractionRows)
	if err != nil {
		return 0, err
	}
	if _, err := db.CopyFrom(ctx, s.pool, "extraction_fields", fieldColumns, allFieldRows); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *PostgresStore) GetExtraction(ctx context.Context, id string) (*ExtractionRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, image, fields, created_at FROM extractions WHERE id = $1`,
		id,
	)

	var rec ExtractionRecord
	var fieldsJSON []byte
	err := row.Scan(&rec.ID, &rec.Image, &fieldsJSON, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("extraction not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan extraction")
	}
	if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal fields")
	}
	return &rec, nil
}

func (s *PostgresStore) ListExtractions(ctx context.Context, filter ExtractionFilter) ([]ExtractionRecord, error) {
	query := `SELECT id, image, fields, created_at FROM extractions WHERE 1=1`
	var args []any

	if filter.Image != "" {
		args = append(args, filter.Image)
		query += fmt.Sprintf(` AND image = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list extractions")
	}
	defer rows.Close()

	var records []ExtractionRecord
	for rows.Next() {
		var rec ExtractionRecord
		var fieldsJSON []byte
		if err := rows.Scan(&rec.ID, &rec.Image, &fieldsJSON, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan extraction")
		}
		if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal fields")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list extractions iterate")
}

func (s *PostgresStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM extractions WHERE created_at < $1`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete extractions")
	}
	return int(tag.RowsAffected()), nil
}
