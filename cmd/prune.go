package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/store"
)

var pruneOlderThan time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored extractions older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(cmd.Context(), cfg.Store.Driver, cfg.Store.Path, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Migrate(cmd.Context()); err != nil {
			return err
		}

		n, err := s.DeleteBefore(cmd.Context(), time.Now().Add(-pruneOlderThan))
		if err != nil {
			return err
		}
		zap.L().Info("prune complete", zap.Int("deleted", n))
		return nil
	},
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "delete extractions older than this")
	rootCmd.AddCommand(pruneCmd)
}
