package models

import (
	"fmt"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/well"
)

// Plate geometry bounds for supported plate formats (up to 384-well).
const (
	maxRowLetter = 'P'
	maxColumn    = 48
)

// AssayCondition describes the experimental condition of a single well.
type AssayCondition struct {
	// Plate is the plate identifier/name.
	Plate string `json:"plate"`
	// Well is the well label, canonicalized by Validate (e.g. "A01").
	Well string `json:"well"`
	// Conditions holds the remaining metadata columns for this well.
	Conditions map[string]string `json:"conditions,omitempty"`
}

// Validate normalizes the well label to its canonical form and checks it
// against the supported plate geometry (rows A-P, columns 1-48).
func (c *AssayCondition) Validate() error {
	coord, err := well.Parse(c.Well)
	if err != nil {
		return err
	}
	if coord.Row > maxRowLetter-'A' {
		return fmt.Errorf("%w: %q: row letter must be A-%c", well.ErrInvalidLabel, c.Well, maxRowLetter)
	}
	if coord.Col >= maxColumn {
		return fmt.Errorf("%w: %q: column must be 1-%d", well.ErrInvalidLabel, c.Well, maxColumn)
	}

	label, err := well.Format(coord)
	if err != nil {
		return err
	}
	c.Well = label
	return nil
}

// Coordinate returns the zero-based plate position of the well.
func (c *AssayCondition) Coordinate() (well.Coordinate, error) {
	return well.Parse(c.Well)
}
