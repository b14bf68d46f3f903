package omero

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/well"
)

// Plate is a multi-well plate within a screen.
type Plate struct {
	ID   int64
	Name string
}

// Well is a single well within a plate, addressed by its zero-based
// plate coordinate.
type Well struct {
	ID    int64
	Coord well.Coordinate
}

// Label returns the canonical human-readable label of the well.
func (w Well) Label() (string, error) {
	return well.Format(w.Coord)
}

// pageLimit is the page size used when walking paginated JSON API listings.
const pageLimit = 500

// ListPlates returns the plates linked to a screen.
func (c *Client) ListPlates(ctx context.Context, screenID int64) ([]Plate, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	var plates []Plate
	for offset := 0; ; offset += pageLimit {
		var page struct {
			Data []struct {
				ID   int64  `json:"@id"`
				Name string `json:"Name"`
			} `json:"data"`
		}
		query := url.Values{
			"limit":  {fmt.Sprintf("%d", pageLimit)},
			"offset": {fmt.Sprintf("%d", offset)},
		}
		path := fmt.Sprintf("/api/v%s/m/screens/%d/plates/", apiVersion, screenID)
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, fmt.Errorf("listing plates of screen %d: %w", screenID, err)
		}
		for _, p := range page.Data {
			plates = append(plates, Plate{ID: p.ID, Name: p.Name})
		}
		if len(page.Data) < pageLimit {
			break
		}
	}
	return plates, nil
}

// ListWells returns the wells of a plate with their zero-based (row,
// column) coordinates as reported by the server.
func (c *Client) ListWells(ctx context.Context, plateID int64) ([]Well, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	var wells []Well
	for offset := 0; ; offset += pageLimit {
		var page struct {
			Data []struct {
				ID     int64 `json:"@id"`
				Row    int   `json:"Row"`
				Column int   `json:"Column"`
			} `json:"data"`
		}
		query := url.Values{
			"limit":  {fmt.Sprintf("%d", pageLimit)},
			"offset": {fmt.Sprintf("%d", offset)},
		}
		path := fmt.Sprintf("/api/v%s/m/plates/%d/wells/", apiVersion, plateID)
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, fmt.Errorf("listing wells of plate %d: %w", plateID, err)
		}
		for _, w := range page.Data {
			wells = append(wells, Well{
				ID:    w.ID,
				Coord: well.Coordinate{Row: w.Row, Col: w.Column},
			})
		}
		if len(page.Data) < pageLimit {
			break
		}
	}
	return wells, nil
}
