package parser

import (
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
)

// errMissingColumns indicates the AssayConditions sheet lacks the
// mandatory Plate or Well column.
var errMissingColumns = errors.New("missing required 'Plate' or 'Well' column")

// parseConditionSheet reads the AssayConditions sheet: a comment-prefixed
// header row naming at least Plate and Well, followed by one row per well.
// Every other non-empty column becomes a condition entry. Well labels are
// validated and canonicalized.
func parseConditionSheet(f *excelize.File, sheetName string) ([]models.AssayCondition, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &SheetError{SheetName: sheetName, Err: err}
	}

	var headers []string
	plateCol, wellCol := -1, -1
	var conditions []models.AssayCondition

	for _, row := range rows {
		if rowEmpty(row) || strings.HasPrefix(strings.TrimSpace(cellAt(row, 0)), "#") {
			continue
		}

		// First non-comment row is the header.
		if headers == nil {
			headers = make([]string, len(row))
			for i, h := range row {
				headers[i] = strings.TrimSpace(h)
				switch headers[i] {
				case "Plate":
					plateCol = i
				case "Well":
					wellCol = i
				}
			}
			if plateCol < 0 || wellCol < 0 {
				return nil, &SheetError{SheetName: sheetName, Err: errMissingColumns}
			}
			continue
		}

		plate := strings.TrimSpace(cellAt(row, plateCol))
		wellLabel := strings.TrimSpace(cellAt(row, wellCol))
		if plate == "" || wellLabel == "" {
			continue
		}

		condition := models.AssayCondition{
			Plate:      plate,
			Well:       wellLabel,
			Conditions: make(map[string]string),
		}
		for i, header := range headers {
			if i == plateCol || i == wellCol || header == "" {
				continue
			}
			if value := strings.TrimSpace(cellAt(row, i)); value != "" {
				condition.Conditions[header] = value
			}
		}

		if err := condition.Validate(); err != nil {
			return nil, &SheetError{SheetName: sheetName, Err: err}
		}
		conditions = append(conditions, condition)
	}

	if headers == nil {
		return nil, &SheetError{SheetName: sheetName, Err: errMissingColumns}
	}

	return conditions, nil
}

// cellAt returns the cell at index i, or "" when the row is shorter.
// GetRows trims trailing empty cells, so short rows are common.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
