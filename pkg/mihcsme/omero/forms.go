package omero

import (
	"context"
	"encoding/json"
	"fmt"
)

// Form is an OMERO.forms form definition.
type Form struct {
	ID        string `json:"id"`
	Schema    string `json:"schema"`
	Timestamp string `json:"timestamp"`
}

// FormData is a stored submission of a form against an object.
type FormData struct {
	FormData  string `json:"formData"`
	ChangedBy int64  `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
	Message   string `json:"message"`
}

// ListForms returns all form definitions known to the OMERO.forms plugin.
func (c *Client) ListForms(ctx context.Context) ([]Form, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var result struct {
		Forms []Form `json:"forms"`
	}
	if err := c.get(ctx, "/omero_forms/list_forms/", nil, &result); err != nil {
		return nil, err
	}
	return result.Forms, nil
}

// GetForm returns the latest version of a form definition.
func (c *Client) GetForm(ctx context.Context, formID string) (*Form, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var result struct {
		Form Form `json:"form"`
	}
	path := fmt.Sprintf("/omero_forms/get_form/%s/", formID)
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Form, nil
}

// GetFormData returns the stored form data for an object. Object types use
// the webclient spelling ("Dataset", "Plate", ...).
func (c *Client) GetFormData(ctx context.Context, formID, objType string, objID int64) (*FormData, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var result struct {
		Data FormData `json:"data"`
	}
	path := fmt.Sprintf("/omero_forms/get_form_data/%s/%s/%d/", formID, objType, objID)
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// SaveFormData stores form data for an object. The submission is stamped
// with the form definition's own timestamp, matching what the web UI sends.
func (c *Client) SaveFormData(ctx context.Context, formID, objType string, objID int64, data map[string]any, message string) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	form, err := c.GetForm(ctx, formID)
	if err != nil {
		return fmt.Errorf("fetching form %s: %w", formID, err)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"data":          string(encoded),
		"formTimestamp": form.Timestamp,
		"message":       message,
	}
	path := fmt.Sprintf("/omero_forms/save_form_data/%s/%s/%d/", formID, objType, objID)
	return c.postJSON(ctx, path, payload, nil)
}
