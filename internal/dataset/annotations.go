package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// LoadAnnotations reads the annotations table at path and returns a map
// from image basename (no extension) to ground-truth idiom. CSV and XLSX
// are both accepted; headers are matched case-insensitively and must
// include "filename" and "solution" columns. Rows with an empty filename
// or solution are dropped.
func LoadAnnotations(path string) (map[string]string, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("dataset: annotations file %s is empty", path)
	}

	idxImg, idxAns := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "filename":
			idxImg = i
		case "solution":
			idxAns = i
		}
	}
	if idxImg < 0 || idxAns < 0 {
		return nil, eris.Errorf("dataset: %s must have 'filename' and 'solution' columns (case-insensitive)", path)
	}

	annotations := make(map[string]string)
	for _, row := range rows[1:] {
		if len(row) <= idxImg || len(row) <= idxAns {
			continue
		}
		key := strings.TrimSpace(row[idxImg])
		// Annotation files list "001.png"; keys are extension-free so
		// they pair with images regardless of format.
		if ext := filepath.Ext(key); imageExtensions[strings.ToLower(ext)] {
			key = strings.TrimSuffix(key, ext)
		}
		answer := strings.TrimSpace(row[idxAns])
		if key != "" && answer != "" {
			annotations[key] = answer
		}
	}
	return annotations, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open annotations")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read annotations csv")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open annotations xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("dataset: %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
