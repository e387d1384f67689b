package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileFormatError means the upload could not be read as a spreadsheet at all.
type FileFormatError struct {
	Filename string
	Reason   string
}

func (e *FileFormatError) Error() string {
	return fmt.Sprintf("cannot read %s as a spreadsheet: %s", e.Filename, e.Reason)
}

// AllowedExtension reports whether the declared filename carries a supported
// spreadsheet extension.
func AllowedExtension(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") ||
		strings.HasSuffix(name, ".xls") ||
		strings.HasSuffix(name, ".csv")
}

// ReadSheet turns raw upload bytes into rows of cells. It tries xlsx first
// and falls back to CSV, so a mislabeled file still ingests when the content
// is readable. The first returned row is the header row.
func ReadSheet(data []byte, filename string) ([][]string, error) {
	if rows, err := readXLSX(data); err == nil {
		return rows, nil
	}
	rows, err := readCSV(data)
	if err != nil {
		return nil, &FileFormatError{Filename: filename, Reason: err.Error()}
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows handled per row downstream

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	return rows, nil
}
