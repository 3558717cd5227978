// Package extract runs the full per-image pipeline: crop each
// configured field region, recognize text in it, and resolve the
// observations into validated values.
package extract

import (
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/imaging"
	"github.com/fairwaylabs/shotlens/internal/model"
	"github.com/fairwaylabs/shotlens/internal/ocr"
	"github.com/fairwaylabs/shotlens/internal/resolve"
)

// Extractor processes single screenshots.
type Extractor struct {
	engine   ocr.Engine
	registry *model.FieldRegistry
	resolver *resolve.Resolver
}

// NewExtractor wires an extractor from its parts.
func NewExtractor(engine ocr.Engine, registry *model.FieldRegistry, weights resolve.Weights) *Extractor {
	return &Extractor{
		engine:   engine,
		registry: registry,
		resolver: resolve.NewResolver(registry, weights),
	}
}

// Extract runs recognition and resolution for every configured field
// of one screenshot. Recognition failures on individual fields degrade
// to not-found rather than failing the whole image.
func (e *Extractor) Extract(ctx context.Context, imagePath string) (model.Extraction, error) {
	img, err := imaging.Load(imagePath)
	if err != nil {
		return model.Extraction{}, err
	}

	obsByField := make(map[string][]model.Observation, len(e.registry.Fields))
	for i := range e.registry.Fields {
		spec := &e.registry.Fields[i]

		obs, err := e.recognizeField(ctx, img, spec)
		if err != nil {
			if ctx.Err() != nil {
				return model.Extraction{}, eris.Wrap(ctx.Err(), "extract: cancelled")
			}
			zap.L().Warn("extract: field recognition failed",
				zap.String("image", filepath.Base(imagePath)),
				zap.String("field", spec.Name),
				zap.Error(err),
			)
			continue
		}
		obsByField[spec.Name] = obs
	}

	return model.Extraction{
		Image:  imagePath,
		Fields: e.resolver.ResolveAll(obsByField),
	}, nil
}

// recognizeField crops the field region, runs the engine on it, and
// translates observation boxes back into full-image coordinates so
// proximity scoring works in one coordinate space.
func (e *Extractor) recognizeField(ctx context.Context, img image.Image, spec *model.FieldSpec) ([]model.Observation, error) {
	cropped, err := imaging.Crop(img, spec.CropBox)
	if err != nil {
		return nil, err
	}

	path, err := imaging.WriteTempPNG(cropped)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	obs, err := e.engine.Recognize(ctx, path)
	if err != nil {
		return nil, err
	}

	for i := range obs {
		if obs[i].Box != nil {
			obs[i].Box.X += spec.CropBox.X
			obs[i].Box.Y += spec.CropBox.Y
		}
	}
	return obs, nil
}
