// Package models defines data structures for MIHCSME metadata.
package models

// Groups is a two-level key-value structure: annotation group name to
// metadata key to value. Values are strings because the annotation store
// represents every value as a string.
type Groups map[string]map[string]string

// InvestigationInformation holds investigation-level metadata organized
// by annotation group.
type InvestigationInformation struct {
	Groups Groups `json:"groups"`
}

// StudyInformation holds study-level metadata organized by annotation group.
type StudyInformation struct {
	Groups Groups `json:"groups"`
}

// AssayInformation holds assay-level metadata organized by annotation group.
type AssayInformation struct {
	Groups Groups `json:"groups"`
}
