package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseReferenceSheet reads a reference sheet (name starting with "_"):
// a header row followed by key-value rows, first column key, second value.
func parseReferenceSheet(f *excelize.File, sheetName string) (map[string]string, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &SheetError{SheetName: sheetName, Err: err}
	}

	data := make(map[string]string)
	seenHeader := false
	for _, row := range rows {
		if rowEmpty(row) || strings.HasPrefix(strings.TrimSpace(cellAt(row, 0)), "#") {
			continue
		}
		if !seenHeader {
			seenHeader = true
			continue
		}

		key := strings.TrimSpace(cellAt(row, 0))
		if key == "" {
			continue
		}
		data[key] = strings.TrimSpace(cellAt(row, 1))
	}

	return data, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
