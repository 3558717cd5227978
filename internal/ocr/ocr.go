// Package ocr abstracts the external text-recognition engine. The
// resolution engine never talks to an OCR backend directly; it consumes
// the observations produced here.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fairwaylabs/shotlens/internal/config"
	"github.com/fairwaylabs/shotlens/internal/model"
)

// Engine recognizes text in a cropped region image. Implementations
// return zero or more observations in crop-local coordinates; zero
// observations means the region held no readable text and is not an
// error.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]model.Observation, error)
}

// NewEngine creates an Engine based on config.
func NewEngine(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Provider {
	case "tesseract", "":
		return NewTesseract(cfg.TesseractPath, cfg.PSMs), nil
	case "easyocr":
		if cfg.EasyOCRURL == "" {
			return nil, eris.New("ocr: easyocr provider requires easyocr_url")
		}
		return NewEasyOCR(cfg.EasyOCRURL, EasyOCROptions{
			RequestsPerSecond: cfg.RateLimit,
			Timeout:           cfg.Timeout(),
			MaxRetries:        cfg.MaxRetries,
		}), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
