// Package well converts between human-readable well labels (e.g. "A01")
// and zero-based plate coordinates.
package well

import (
	"errors"
	"fmt"
)

// ErrInvalidLabel indicates a malformed well label string.
var ErrInvalidLabel = errors.New("invalid well label")

// ErrInvalidCoordinate indicates a coordinate outside the addressable plate range.
var ErrInvalidCoordinate = errors.New("invalid well coordinate")

// Coordinate is a zero-based (row, column) position within a plate.
// Row 0 is the row labelled "A", column 0 is the column labelled "01".
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Parse converts a well label into a zero-based Coordinate.
// Labels consist of a single row letter followed by a 1-based column
// number. The letter is case-insensitive and the column may be unpadded,
// so "a1", "A1" and "A01" all map to {0, 0}.
func Parse(label string) (Coordinate, error) {
	if len(label) < 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	letter := label[0]
	switch {
	case letter >= 'a' && letter <= 'z':
		letter -= 'a' - 'A'
	case letter >= 'A' && letter <= 'Z':
	default:
		return Coordinate{}, fmt.Errorf("%w: %q: row letter must be A-Z", ErrInvalidLabel, label)
	}

	col := 0
	for _, d := range label[1:] {
		if d < '0' || d > '9' {
			return Coordinate{}, fmt.Errorf("%w: %q: column must be numeric", ErrInvalidLabel, label)
		}
		col = col*10 + int(d-'0')
	}
	if col == 0 {
		return Coordinate{}, fmt.Errorf("%w: %q: column numbers are 1-based", ErrInvalidLabel, label)
	}

	return Coordinate{Row: int(letter - 'A'), Col: col - 1}, nil
}

// Format converts a zero-based Coordinate into its canonical label:
// uppercase row letter plus zero-padded two-digit column, e.g. {0, 0} -> "A01".
// Rows beyond "Z" have no single-letter form and are rejected.
func Format(c Coordinate) (string, error) {
	if c.Row < 0 || c.Col < 0 {
		return "", fmt.Errorf("%w: (%d, %d): indices must be non-negative", ErrInvalidCoordinate, c.Row, c.Col)
	}
	if c.Row > 'Z'-'A' {
		return "", fmt.Errorf("%w: (%d, %d): row has no single-letter label", ErrInvalidCoordinate, c.Row, c.Col)
	}
	return fmt.Sprintf("%c%02d", byte('A')+byte(c.Row), c.Col+1), nil
}

// Canonical normalizes a well label to its canonical form ("a1" -> "A01").
func Canonical(label string) (string, error) {
	c, err := Parse(label)
	if err != nil {
		return "", err
	}
	return Format(c)
}
