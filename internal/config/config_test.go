package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tesseract", cfg.OCR.Provider)
	assert.Equal(t, 3, cfg.OCR.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.OCR.Timeout())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentImages)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, float64(100), cfg.Scoring.Proximity)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHOTLENS_OCR_PROVIDER", "easyocr")
	t.Setenv("SHOTLENS_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "easyocr", cfg.OCR.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
