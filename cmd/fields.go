package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/fields"
	"github.com/fairwaylabs/shotlens/internal/model"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show the effective field layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		printFields(registry)
		return nil
	},
}

var fieldsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a field layout file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := fields.LoadFile(args[0])
		if err != nil {
			return err
		}
		zap.L().Info("field layout valid",
			zap.String("file", args[0]),
			zap.Int("fields", len(registry.Fields)),
		)
		return nil
	},
}

func printFields(registry *model.FieldRegistry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKEY\tCROP\tRANGE\tDECIMAL\tDECODER")
	for _, f := range registry.Fields {
		key := f.OutputKey
		if key == "" {
			key = f.Name
		}
		rng := "-"
		if f.ValidRange != nil {
			rng = fmt.Sprintf("%g..%g", f.ValidRange.Min, f.ValidRange.Max)
		}
		decoder := f.Decoder
		if decoder == "" {
			decoder = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t(%g,%g %gx%g)\t%s\t%t\t%s\n",
			f.Name, key, f.CropBox.X, f.CropBox.Y, f.CropBox.W, f.CropBox.H,
			rng, f.ExpectsDecimal, decoder,
		)
	}
	w.Flush()
}

func init() {
	fieldsCmd.AddCommand(fieldsValidateCmd)
	rootCmd.AddCommand(fieldsCmd)
}
