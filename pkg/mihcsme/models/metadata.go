package models

import "strings"

// Sheet names used in MIHCSME workbooks and in the flattened annotation
// layout produced by ToAnnotationMap.
const (
	SheetInvestigation = "InvestigationInformation"
	SheetStudy         = "StudyInformation"
	SheetAssay         = "AssayInformation"
	SheetConditions    = "AssayConditions"
)

// Metadata is the complete MIHCSME metadata structure for one screen.
type Metadata struct {
	InvestigationInformation *InvestigationInformation `json:"investigation_information,omitempty"`
	StudyInformation         *StudyInformation         `json:"study_information,omitempty"`
	AssayInformation         *AssayInformation         `json:"assay_information,omitempty"`
	AssayConditions          []AssayCondition          `json:"assay_conditions,omitempty"`
	ReferenceSheets          []ReferenceSheet          `json:"reference_sheets,omitempty"`
}

// Validate validates every assay condition, normalizing well labels in place.
func (m *Metadata) Validate() error {
	for i := range m.AssayConditions {
		if err := m.AssayConditions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToAnnotationMap flattens the metadata into the layout used for annotation
// upload and JSON interchange: sheet name to groups, "AssayConditions" to a
// list of per-well records with Plate and Well inlined, and reference sheets
// keyed by their underscore-prefixed names.
func (m *Metadata) ToAnnotationMap() map[string]any {
	result := make(map[string]any)

	if m.InvestigationInformation != nil {
		result[SheetInvestigation] = m.InvestigationInformation.Groups
	}
	if m.StudyInformation != nil {
		result[SheetStudy] = m.StudyInformation.Groups
	}
	if m.AssayInformation != nil {
		result[SheetAssay] = m.AssayInformation.Groups
	}

	if len(m.AssayConditions) > 0 {
		conditions := make([]map[string]string, 0, len(m.AssayConditions))
		for _, c := range m.AssayConditions {
			record := map[string]string{
				"Plate": c.Plate,
				"Well":  c.Well,
			}
			for k, v := range c.Conditions {
				record[k] = v
			}
			conditions = append(conditions, record)
		}
		result[SheetConditions] = conditions
	}

	for _, ref := range m.ReferenceSheets {
		result[ref.Name] = ref.Data
	}

	return result
}

// MetadataFromAnnotationMap rebuilds a Metadata from the flattened layout
// produced by ToAnnotationMap.
func MetadataFromAnnotationMap(data map[string]any) *Metadata {
	m := &Metadata{}

	if groups := groupsValue(data[SheetInvestigation]); groups != nil {
		m.InvestigationInformation = &InvestigationInformation{Groups: groups}
	}
	if groups := groupsValue(data[SheetStudy]); groups != nil {
		m.StudyInformation = &StudyInformation{Groups: groups}
	}
	if groups := groupsValue(data[SheetAssay]); groups != nil {
		m.AssayInformation = &AssayInformation{Groups: groups}
	}

	if records, ok := data[SheetConditions].([]map[string]string); ok {
		for _, record := range records {
			condition := AssayCondition{
				Plate:      record["Plate"],
				Well:       record["Well"],
				Conditions: make(map[string]string),
			}
			for k, v := range record {
				if k != "Plate" && k != "Well" {
					condition.Conditions[k] = v
				}
			}
			m.AssayConditions = append(m.AssayConditions, condition)
		}
	}

	for key, value := range data {
		if !strings.HasPrefix(key, "_") {
			continue
		}
		if ref, ok := value.(map[string]string); ok {
			m.ReferenceSheets = append(m.ReferenceSheets, ReferenceSheet{Name: key, Data: ref})
		}
	}

	return m
}

func groupsValue(v any) Groups {
	switch groups := v.(type) {
	case Groups:
		return groups
	case map[string]map[string]string:
		return groups
	}
	return nil
}
