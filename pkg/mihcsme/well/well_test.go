package well

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		label string
		want  Coordinate
	}{
		{"A01", Coordinate{0, 0}},
		{"A12", Coordinate{0, 11}},
		{"H01", Coordinate{7, 0}},
		{"H12", Coordinate{7, 11}},
		{"P24", Coordinate{15, 23}},
		{"a1", Coordinate{0, 0}},
		{"b7", Coordinate{1, 6}},
		{"Z99", Coordinate{25, 98}},
		{"A100", Coordinate{0, 99}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.label)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, expected %v", tt.label, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	labels := []string{"", "A", "1A", "A0", "AA1", "!3", "A1x", "7", "Å1"}

	for _, label := range labels {
		if _, err := Parse(label); !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("Parse(%q) = %v, expected ErrInvalidLabel", label, err)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		coord Coordinate
		want  string
	}{
		{Coordinate{0, 0}, "A01"},
		{Coordinate{7, 11}, "H12"},
		{Coordinate{15, 23}, "P24"},
		{Coordinate{0, 99}, "A100"},
	}

	for _, tt := range tests {
		got, err := Format(tt.coord)
		if err != nil {
			t.Errorf("Format(%v) returned error: %v", tt.coord, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Format(%v) = %q, expected %q", tt.coord, got, tt.want)
		}
	}
}

func TestFormatInvalid(t *testing.T) {
	coords := []Coordinate{{-1, 0}, {0, -1}, {-3, -3}, {26, 0}}

	for _, c := range coords {
		if _, err := Format(c); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("Format(%v) = %v, expected ErrInvalidCoordinate", c, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// Coordinate -> label -> coordinate is exact for every addressable well.
	for row := 0; row < 16; row++ {
		for col := 0; col < 48; col++ {
			c := Coordinate{Row: row, Col: col}
			label, err := Format(c)
			if err != nil {
				t.Fatalf("Format(%v) returned error: %v", c, err)
			}
			back, err := Parse(label)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", label, err)
			}
			if back != c {
				t.Errorf("Parse(Format(%v)) = %v", c, back)
			}
		}
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"a1", "A01"},
		{"A1", "A01"},
		{"A01", "A01"},
		{"h12", "H12"},
	}

	for _, tt := range tests {
		got, err := Canonical(tt.label)
		if err != nil {
			t.Errorf("Canonical(%q) returned error: %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Canonical(%q) = %q, expected %q", tt.label, got, tt.want)
		}
	}
}
