// Package export writes extraction results to CSV, JSON and XLSX files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// Columns derives the output column order from the extractions: image
// first, then every field key in configuration order, with _from/_to
// columns after any range-decoded field.
func Columns(extractions []model.Extraction) []string {
	cols := []string{"image"}
	seen := map[string]bool{}

	for _, ex := range extractions {
		for _, f := range ex.Fields {
			if seen[f.Key] {
				continue
			}
			seen[f.Key] = true
			cols = append(cols, f.Key)
			if rangeField(extractions, f.Key) {
				cols = append(cols, f.Key+"_from", f.Key+"_to")
			}
		}
	}
	return cols
}

func rangeField(extractions []model.Extraction, key string) bool {
	for _, ex := range extractions {
		for _, f := range ex.Fields {
			if f.Key == key && f.RangeFrom != nil {
				return true
			}
		}
	}
	return false
}

// WriteCSV writes one row per extraction to w.
func WriteCSV(w io.Writer, extractions []model.Extraction) error {
	cols := Columns(extractions)
	writer := csv.NewWriter(w)

	if err := writer.Write(cols); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, ex := range extractions {
		if err := writer.Write(rowValues(cols, ex)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", ex.Image)
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "export: flush csv")
}

// WriteCSVFile writes extractions to a CSV file at path, creating
// parent directories as needed.
func WriteCSVFile(path string, extractions []model.Extraction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close()
	return WriteCSV(f, extractions)
}

// WriteXLSX writes extractions to an XLSX workbook with a single
// Results sheet.
func WriteXLSX(path string, extractions []model.Extraction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	cols := Columns(extractions)
	header := sheet.AddRow()
	for _, col := range cols {
		header.AddCell().SetString(col)
	}
	for _, ex := range extractions {
		row := sheet.AddRow()
		for _, v := range rowValues(cols, ex) {
			row.AddCell().SetString(v)
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}

// WriteJSON writes extractions as a JSON array, one object per image.
func WriteJSON(w io.Writer, extractions []model.Extraction) error {
	rows := make([]map[string]string, 0, len(extractions))
	for _, ex := range extractions {
		row := ex.ByKey()
		row["image"] = filepath.Base(ex.Image)
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rows), "export: encode json")
}

// WriteJSONFile writes extractions to a JSON file at path, creating
// parent directories as needed.
func WriteJSONFile(path string, extractions []model.Extraction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create json file")
	}
	defer f.Close()
	return WriteJSON(f, extractions)
}

func rowValues(cols []string, ex model.Extraction) []string {
	byKey := ex.ByKey()
	row := make([]string, len(cols))
	for i, col := range cols {
		if col == "image" {
			// Labels and downstream joins key on the bare filename.
			row[i] = filepath.Base(ex.Image)
			continue
		}
		row[i] = byKey[col]
	}
	return row
}
