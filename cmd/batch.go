package main

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/export"
	"github.com/fairwaylabs/shotlens/internal/store"
)

var (
	batchConcurrency int
	batchFormat      string
	batchOutput      string
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract metrics from every screenshot in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ex, err := newExtractor()
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentImages
		}

		results, err := ex.ExtractDir(ctx, args[0], concurrency)
		if err != nil {
			return err
		}
		zap.L().Info("batch complete", zap.Int("images", len(results)))

		if batchSave {
			s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DatabaseURL)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Migrate(ctx); err != nil {
				return err
			}
			n, err := s.SaveBatch(ctx, results)
			if err != nil {
				return err
			}
			zap.L().Info("batch saved", zap.Int("extractions", n))
		}

		output := batchOutput
		if output == "" {
			output = filepath.Join(cfg.Export.Dir, "results."+batchFormat)
		}

		switch batchFormat {
		case "csv":
			err = export.WriteCSVFile(output, results)
		case "json":
			err = export.WriteJSONFile(output, results)
		case "xlsx":
			err = export.WriteXLSX(output, results)
		default:
			return eris.Errorf("batch: unknown format %q", batchFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("results written", zap.String("path", output))
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max images processed in parallel (default from config)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "csv", "output format: csv, json or xlsx")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output file path (default under export dir)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist extractions to the results store")
	rootCmd.AddCommand(batchCmd)
}
