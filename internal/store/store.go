// Package store persists extraction results.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// ExtractionRecord is a stored extraction with its identity and
// timestamps.
type ExtractionRecord struct {
	ID        string                `json:"id"`
	Image     string                `json:"image"`
	Fields    []model.ResolvedField `json:"fields"`
	CreatedAt time.Time             `json:"created_at"`
}

// ExtractionFilter specifies criteria for listing extractions.
type ExtractionFilter struct {
	Image  string `json:"image,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Open constructs a store for the configured driver.
func Open(ctx context.Context, driver, path, databaseURL string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, databaseURL, nil)
	case "sqlite", "":
		return NewSQLite(path)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// Store defines the persistence interface for extraction results.
type Store interface {
	SaveExtraction(ctx context.Context, ex model.Extraction) (*ExtractionRecord, error)
	SaveBatch(ctx context.Context, exs []model.Extraction) (int, error)
	GetExtraction(ctx context.Context, id string) (*ExtractionRecord, error)
	ListExtractions(ctx context.Context, filter ExtractionFilter) ([]ExtractionRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
