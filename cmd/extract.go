package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/store"
)

var extractSave bool

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract metrics from a single screenshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := newExtractor()
		if err != nil {
			return err
		}

		result, err := ex.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if extractSave {
			s, err := store.Open(cmd.Context(), cfg.Store.Driver, cfg.Store.Path, cfg.Store.DatabaseURL)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Migrate(cmd.Context()); err != nil {
				return err
			}
			rec, err := s.SaveExtraction(cmd.Context(), result)
			if err != nil {
				return err
			}
			zap.L().Info("extraction saved", zap.String("id", rec.ID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.ByKey()); err != nil {
			return eris.Wrap(err, "extract: encode result")
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "persist the extraction to the results store")
	rootCmd.AddCommand(extractCmd)
}
