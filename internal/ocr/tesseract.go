package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// defaultPSMs are the page-segmentation modes tried per region: a single
// text line, a single word, and sparse text. Each mode is one OCR pass;
// the resolver reconciles their observations.
var defaultPSMs = []int{7, 8, 11}

// Tesseract recognizes text by executing the tesseract CLI with TSV
// output.
type Tesseract struct {
	binPath string
	psms    []int
}

// NewTesseract creates a Tesseract engine. Empty binPath means
// "tesseract" on PATH; empty psms means the default mode set.
func NewTesseract(binPath string, psms []int) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	if len(psms) == 0 {
		psms = defaultPSMs
	}
	return &Tesseract{binPath: binPath, psms: psms}
}

// Recognize runs one tesseract pass per configured segmentation mode and
// merges the word-level observations. A pass that fails is logged and
// skipped; the whole call errors only when every pass fails.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) ([]model.Observation, error) {
	var merged []model.Observation
	var lastErr error
	failed := 0

	for _, psm := range t.psms {
		obs, err := t.runPass(ctx, imagePath, psm)
		if err != nil {
			zap.L().Debug("ocr: tesseract pass failed",
				zap.String("image", imagePath),
				zap.Int("psm", psm),
				zap.Error(err),
			)
			failed++
			lastErr = err
			continue
		}
		merged = append(merged, obs...)
	}

	if failed == len(t.psms) && lastErr != nil {
		return nil, eris.Wrapf(lastErr, "ocr: all tesseract passes failed for %s", imagePath)
	}
	return merged, nil
}

func (t *Tesseract) runPass(ctx context.Context, imagePath string, psm int) ([]model.Observation, error) {
	cmd := exec.CommandContext(ctx, t.binPath, imagePath, "stdout", "--psm", strconv.Itoa(psm), "tsv")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "ocr: tesseract --psm %d: %s", psm, stderr.String())
	}

	return parseTSV(stdout.String()), nil
}

// parseTSV extracts word-level observations from tesseract TSV output.
// Columns: level page block par line word left top width height conf text.
// Word rows have level 5 and a non-negative confidence.
func parseTSV(out string) []model.Observation {
	var obs []model.Observation

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue // header
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[0] != "5" {
			continue
		}

		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}

		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}

		left, err1 := strconv.ParseFloat(cols[6], 64)
		top, err2 := strconv.ParseFloat(cols[7], 64)
		width, err3 := strconv.ParseFloat(cols[8], 64)
		height, err4 := strconv.ParseFloat(cols[9], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		obs = append(obs, model.Observation{
			Text:       text,
			Box:        &model.Box{X: left, Y: top, W: width, H: height},
			Confidence: conf / 100, // tesseract reports 0-100
		})
	}

	return obs
}
