package groundtruth

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// LoadCorpusXLSX reads a labeled corpus from the first sheet of an XLSX
// workbook with the same image,field,value layout as the CSV form.
// Labelers tend to work in spreadsheets, so this avoids an export step.
func LoadCorpusXLSX(path string) (Corpus, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "groundtruth: open corpus workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("groundtruth: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("groundtruth: empty corpus")
	}

	header := rowStrings(sheet.Rows[0], 3)
	if header[0] != "image" || header[1] != "field" || header[2] != "value" {
		return nil, eris.Errorf("groundtruth: unexpected header %v", header)
	}

	corpus := make(Corpus)
	for _, row := range sheet.Rows[1:] {
		cells := rowStrings(row, 3)
		image, field, value := cells[0], cells[1], cells[2]
		if image == "" {
			continue
		}
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

// rowStrings reads up to n cells, padding short rows with empty strings.
func rowStrings(row *xlsx.Row, n int) []string {
	cells := make([]string, n)
	for i := 0; i < n && i < len(row.Cells); i++ {
		cells[i] = row.Cells[i].String()
	}
	return cells
}
