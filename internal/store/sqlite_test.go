package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/shotlens/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleExtraction(image string) model.Extraction {
	from, to := 30.0, 50.0
	return model.Extraction{
		Image: image,
		Fields: []model.ResolvedField{
			{Name: "CARRY", Key: "CARRY", Value: "152.4", Found: true},
			{Name: "YARDAGE_RANGE", Key: "YARDAGE_RANGE", Value: "30-50", Found: true, RangeFrom: &from, RangeTo: &to},
			{Name: "STROKES_GAINED", Key: "STROKES_GAINED", Found: false},
		},
	}
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rec, err := s.SaveExtraction(ctx, sampleExtraction("shot1.png"))
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	got, err := s.GetExtraction(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "shot1.png", got.Image)
	require.Len(t, got.Fields, 3)
	assert.Equal(t, "152.4", got.Fields[0].Value)
	require.NotNil(t, got.Fields[1].RangeFrom)
	assert.Equal(t, 30.0, *got.Fields[1].RangeFrom)
	assert.False(t, got.Fields[2].Found)
}

func TestSQLiteGetMissing(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetExtraction(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteSaveBatch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	n, err := s.SaveBatch(ctx, []model.Extraction{
		sampleExtraction("a.png"),
		sampleExtraction("b.png"),
		sampleExtraction("c.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := s.ListExtractions(ctx, ExtractionFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSQLiteListFilterByImage(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveExtraction(ctx, sampleExtraction("a.png"))
	require.NoError(t, err)
	_, err = s.SaveExtraction(ctx, sampleExtraction("b.png"))
	require.NoError(t, err)

	records, err := s.ListExtractions(ctx, ExtractionFilter{Image: "b.png"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b.png", records[0].Image)
}

func TestSQLiteListLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.SaveExtraction(ctx, sampleExtraction("x.png"))
		require.NoError(t, err)
	}

	records, err := s.ListExtractions(ctx, ExtractionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLiteDeleteBefore(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveExtraction(ctx, sampleExtraction("old.png"))
	require.NoError(t, err)

	n, err := s.DeleteBefore(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := s.ListExtractions(ctx, ExtractionFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
