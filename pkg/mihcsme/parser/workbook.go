// Package parser reads MIHCSME metadata workbooks.
package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
)

// SheetError represents an error while parsing a single sheet.
type SheetError struct {
	SheetName string
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("parse error in sheet %q: %v", e.SheetName, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// ParseWorkbook reads a MIHCSME workbook into a Metadata model.
// The four standard sheets must all be present; every sheet whose name
// starts with "_" is read as a reference sheet.
func ParseWorkbook(path string) (*models.Metadata, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	available := make(map[string]bool, len(sheetList))
	for _, name := range sheetList {
		available[name] = true
	}

	var missing []string
	for _, name := range []string{models.SheetInvestigation, models.SheetStudy, models.SheetAssay, models.SheetConditions} {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required sheets: %s", strings.Join(missing, ", "))
	}

	md := &models.Metadata{}

	invGroups, err := parseKeyValueSheet(f, models.SheetInvestigation)
	if err != nil {
		return nil, err
	}
	if len(invGroups) > 0 {
		md.InvestigationInformation = &models.InvestigationInformation{Groups: invGroups}
	}

	studyGroups, err := parseKeyValueSheet(f, models.SheetStudy)
	if err != nil {
		return nil, err
	}
	if len(studyGroups) > 0 {
		md.StudyInformation = &models.StudyInformation{Groups: studyGroups}
	}

	assayGroups, err := parseKeyValueSheet(f, models.SheetAssay)
	if err != nil {
		return nil, err
	}
	if len(assayGroups) > 0 {
		md.AssayInformation = &models.AssayInformation{Groups: assayGroups}
	}

	md.AssayConditions, err = parseConditionSheet(f, models.SheetConditions)
	if err != nil {
		return nil, err
	}

	for _, name := range sheetList {
		if !strings.HasPrefix(name, "_") {
			continue
		}
		data, err := parseReferenceSheet(f, name)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			md.ReferenceSheets = append(md.ReferenceSheets, models.ReferenceSheet{Name: name, Data: data})
		}
	}

	return md, nil
}
