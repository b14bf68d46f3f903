package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
)

// parseKeyValueSheet reads an Investigation/Study/Assay information sheet.
// These sheets have three columns (Group, Key, Value) and are organized
// into annotation groups. Rows whose first cell starts with "#" are
// comments, and the "Annotation_groups" header row is skipped.
func parseKeyValueSheet(f *excelize.File, sheetName string) (models.Groups, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &SheetError{SheetName: sheetName, Err: err}
	}

	groups := make(models.Groups)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}

		group := strings.TrimSpace(row[0])
		if group == "" || group == "Annotation_groups" || strings.HasPrefix(group, "#") {
			continue
		}

		key := strings.TrimSpace(row[1])
		if key == "" {
			continue
		}

		// Trailing empty cells are trimmed by GetRows, so a missing
		// value column means an empty value.
		value := ""
		if len(row) > 2 {
			value = strings.TrimSpace(row[2])
		}

		if groups[group] == nil {
			groups[group] = make(map[string]string)
		}
		groups[group][key] = value
	}

	return groups, nil
}
