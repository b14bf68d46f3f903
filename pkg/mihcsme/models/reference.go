package models

// ReferenceSheet holds lookup data from a workbook reference sheet.
// Reference sheet names keep their leading underscore (e.g. "_Organisms").
type ReferenceSheet struct {
	Name string            `json:"name"`
	Data map[string]string `json:"data,omitempty"`
}
