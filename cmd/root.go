package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/config"
	"github.com/fairwaylabs/shotlens/internal/extract"
	"github.com/fairwaylabs/shotlens/internal/fields"
	"github.com/fairwaylabs/shotlens/internal/model"
	"github.com/fairwaylabs/shotlens/internal/ocr"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shotlens",
	Short: "Extract launch-monitor metrics from golf app screenshots",
	Long:  "Crops configured metric regions out of screenshots, runs OCR over them, and resolves the noisy readings into validated values.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadRegistry builds the field registry from the configured file, or
// the built-in layout when no file is set.
func loadRegistry() (*model.FieldRegistry, error) {
	if cfg.Fields.Path != "" {
		return fields.LoadFile(cfg.Fields.Path)
	}
	return fields.Default(), nil
}

// newExtractor wires the full pipeline from config.
func newExtractor() (*extract.Extractor, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	engine, err := ocr.NewEngine(cfg.OCR)
	if err != nil {
		return nil, err
	}
	return extract.NewExtractor(engine, registry, cfg.Scoring), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
