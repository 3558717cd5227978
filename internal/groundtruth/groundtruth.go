// Package groundtruth compares extraction output against a
// hand-labeled corpus so scoring changes can be checked for
// regressions before they ship.
package groundtruth

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// Corpus maps image name to its expected field values.
type Corpus map[string]map[string]string

// LoadCorpus reads a labeled corpus from a CSV file with an
// image,field,value header row.
func LoadCorpus(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "groundtruth: open corpus")
	}
	defer f.Close()

	return ParseCorpus(f)
}

// ParseCorpus reads corpus rows from r.
func ParseCorpus(r io.Reader) (Corpus, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "groundtruth: read header")
	}
	if header[0] != "image" || header[1] != "field" || header[2] != "value" {
		return nil, eris.Errorf("groundtruth: unexpected header %v", header)
	}

	corpus := make(Corpus)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "groundtruth: read row")
		}
		image, field, value := row[0], row[1], row[2]
		if corpus[image] == nil {
			corpus[image] = make(map[string]string)
		}
		corpus[image][field] = value
	}
	if len(corpus) == 0 {
		return nil, eris.New("groundtruth: empty corpus")
	}
	return corpus, nil
}

// Mismatch records one disagreement between the corpus and an
// extraction.
type Mismatch struct {
	Image    string `json:"image"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// FieldReport aggregates accuracy for one field across the corpus.
type FieldReport struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Matched int    `json:"matched"`
}

// Accuracy returns the match ratio, zero when nothing was labeled.
func (r FieldReport) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Total)
}

// Report is the outcome of comparing extractions against the corpus.
type Report struct {
	Total      int           `json:"total"`
	Matched    int           `json:"matched"`
	Fields     []FieldReport `json:"fields"`
	Mismatches []Mismatch    `json:"mismatches"`
}

// Accuracy returns the overall match ratio.
func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Total)
}

// Compare checks each labeled value against the matching extraction.
// The corpus is keyed by bare filename, so extractions are matched on
// the base of their image path. An empty expected value means the
// field should resolve to not-found; a labeled image with no
// extraction counts every label as a miss.
func Compare(corpus Corpus, extractions []model.Extraction) Report {
	byImage := make(map[string]map[string]string, len(extractions))
	for _, ex := range extractions {
		byImage[filepath.Base(ex.Image)] = ex.ByKey()
	}

	var report Report
	perField := make(map[string]*FieldReport)

	images := make([]string, 0, len(corpus))
	for image := range corpus {
		images = append(images, image)
	}
	sort.Strings(images)

	for _, image := range images {
		got := byImage[image]
		fields := corpus[image]

		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			expected := fields[name]
			fr := perField[name]
			if fr == nil {
				fr = &FieldReport{Name: name}
				perField[name] = fr
			}
			fr.Total++
			report.Total++

			actual := got[name]
			if actual == expected {
				fr.Matched++
				report.Matched++
				continue
			}
			report.Mismatches = append(report.Mismatches, Mismatch{
				Image:    image,
				Field:    name,
				Expected: expected,
				Actual:   actual,
			})
		}
	}

	names := make([]string, 0, len(perField))
	for name := range perField {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		report.Fields = append(report.Fields, *perField[name])
	}
	return report
}
