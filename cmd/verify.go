package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fairwaylabs/shotlens/internal/groundtruth"
)

var (
	verifyCorpus    string
	verifyThreshold float64
)

var verifyCmd = &cobra.Command{
	Use:   "verify <dir>",
	Short: "Check extraction accuracy against a labeled corpus",
	Long:  "Runs the full pipeline over a directory of screenshots and compares the output against hand-labeled expected values, for catching scoring regressions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		corpus, err := loadCorpus(verifyCorpus)
		if err != nil {
			return err
		}

		ex, err := newExtractor()
		if err != nil {
			return err
		}
		results, err := ex.ExtractDir(ctx, args[0], cfg.Batch.MaxConcurrentImages)
		if err != nil {
			return err
		}

		report := groundtruth.Compare(corpus, results)
		printReport(report)

		if report.Accuracy() < verifyThreshold {
			return eris.Errorf("verify: accuracy %.1f%% below threshold %.1f%%",
				report.Accuracy()*100, verifyThreshold*100)
		}
		return nil
	},
}

// loadCorpus picks the corpus loader by file extension.
func loadCorpus(path string) (groundtruth.Corpus, error) {
	if filepath.Ext(path) == ".xlsx" {
		return groundtruth.LoadCorpusXLSX(path)
	}
	return groundtruth.LoadCorpus(path)
}

func printReport(report groundtruth.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tLABELED\tMATCHED\tACCURACY")
	for _, fr := range report.Fields {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", fr.Name, fr.Total, fr.Matched, fr.Accuracy()*100)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%.1f%%\n", report.Total, report.Matched, report.Accuracy()*100)
	w.Flush()

	for _, m := range report.Mismatches {
		fmt.Printf("mismatch %s %s: expected %q got %q\n", m.Image, m.Field, m.Expected, m.Actual)
	}
}

func init() {
	verifyCmd.Flags().StringVar(&verifyCorpus, "corpus", "groundtruth.csv", "labeled corpus CSV (image,field,value)")
	verifyCmd.Flags().Float64Var(&verifyThreshold, "threshold", 0, "fail when overall accuracy drops below this ratio")
	rootCmd.AddCommand(verifyCmd)
}
