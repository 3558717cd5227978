package extract

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/shotlens/internal/model"
	"github.com/fairwaylabs/shotlens/internal/resolve"
)

type stubEngine struct {
	obs  []model.Observation
	err  error
	seen int
}

func (s *stubEngine) Recognize(_ context.Context, _ string) ([]model.Observation, error) {
	s.seen++
	return s.obs, s.err
}

func writeScreenshot(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1200, 800))
	for y := 0; y < 800; y++ {
		for x := 0; x < 1200; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func testRegistry(t *testing.T) *model.FieldRegistry {
	t.Helper()
	reg, err := model.NewFieldRegistry([]model.FieldSpec{
		{
			Name:       "CARRY",
			CropBox:    model.Box{X: 100, Y: 100, W: 200, H: 80},
			ValidRange: &model.Range{Min: 1, Max: 400},
		},
	})
	require.NoError(t, err)
	return reg
}

func TestExtractResolvesField(t *testing.T) {
	path := writeScreenshot(t)
	engine := &stubEngine{obs: []model.Observation{
		{Text: "152.4", Box: &model.Box{X: 90, Y: 30, W: 40, H: 20}, Confidence: 0.9},
	}}

	ex := NewExtractor(engine, testRegistry(t), resolve.DefaultWeights())
	result, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, engine.seen)
	fields := result.ByKey()
	assert.Equal(t, "152.4", fields["CARRY"])
}

func TestExtractEngineFailureDegradesToNotFound(t *testing.T) {
	path := writeScreenshot(t)
	engine := &stubEngine{err: eris.New("recognizer down")}

	ex := NewExtractor(engine, testRegistry(t), resolve.DefaultWeights())
	result, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, result.Fields, 1)
	assert.False(t, result.Fields[0].Found)
}

func TestExtractMissingImage(t *testing.T) {
	engine := &stubEngine{}
	ex := NewExtractor(engine, testRegistry(t), resolve.DefaultWeights())

	_, err := ex.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Zero(t, engine.seen)
}
