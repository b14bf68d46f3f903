package omero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Object types accepted by the annotation endpoints.
const (
	TypeScreen  = "screen"
	TypePlate   = "plate"
	TypeWell    = "well"
	TypeProject = "project"
	TypeDataset = "dataset"
	TypeImage   = "image"
)

// MapAnnotation is a namespaced list of key-value pairs attached to a
// hierarchy object. Values preserve the server-side pair order.
type MapAnnotation struct {
	ID        int64
	Namespace string
	Values    [][2]string
}

// ValueMap returns the pairs as a map. Later duplicates win.
func (a MapAnnotation) ValueMap() map[string]string {
	m := make(map[string]string, len(a.Values))
	for _, pair := range a.Values {
		m[pair[0]] = pair[1]
	}
	return m
}

// CreateMapAnnotation attaches a new map annotation to the given object
// under the namespace and returns the annotation ID. Keys are uploaded in
// sorted order so repeated uploads produce identical annotations.
//
// The server does not deduplicate: uploading twice yields two annotations.
// Callers wanting replace semantics must call DeleteMapAnnotations first.
func (c *Client) CreateMapAnnotation(ctx context.Context, objType string, objID int64, kv map[string]string, namespace string) (int64, error) {
	if err := c.requireSession(); err != nil {
		return 0, err
	}
	if len(kv) == 0 {
		return 0, fmt.Errorf("no key-value pairs to annotate")
	}

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(kv))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, kv[k]})
	}

	payload, err := json.Marshal(pairs)
	if err != nil {
		return 0, err
	}

	form := url.Values{
		"mapAnnotation": {string(payload)},
		"ns":            {namespace},
		objType:         {fmt.Sprintf("%d", objID)},
	}

	var result struct {
		AnnID int64 `json:"annId"`
	}
	if err := c.postForm(ctx, "/webclient/annotate_map/", form, &result); err != nil {
		return 0, fmt.Errorf("creating map annotation on %s %d: %w", objType, objID, err)
	}

	c.log.Debug("Created map annotation",
		zap.String("type", objType),
		zap.Int64("id", objID),
		zap.String("ns", namespace),
		zap.Int64("annotation", result.AnnID),
		zap.Int("pairs", len(pairs)))
	return result.AnnID, nil
}

// ListMapAnnotations returns the map annotations on an object whose
// namespace starts with nsPrefix. An empty prefix matches everything.
func (c *Client) ListMapAnnotations(ctx context.Context, objType string, objID int64, nsPrefix string) ([]MapAnnotation, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	query := url.Values{
		"type":  {"map"},
		objType: {fmt.Sprintf("%d", objID)},
	}

	var result struct {
		Annotations []struct {
			ID     int64       `json:"id"`
			NS     string      `json:"ns"`
			Values [][2]string `json:"values"`
		} `json:"annotations"`
	}
	if err := c.get(ctx, "/webclient/api/annotations/", query, &result); err != nil {
		return nil, fmt.Errorf("listing annotations on %s %d: %w", objType, objID, err)
	}

	var annotations []MapAnnotation
	for _, ann := range result.Annotations {
		if nsPrefix != "" && !strings.HasPrefix(ann.NS, nsPrefix) {
			continue
		}
		annotations = append(annotations, MapAnnotation{
			ID:        ann.ID,
			Namespace: ann.NS,
			Values:    ann.Values,
		})
	}
	return annotations, nil
}

// DeleteMapAnnotations removes every map annotation on the object whose
// namespace starts with nsPrefix and returns how many were removed.
// Posting an annotation ID with an empty pair list deletes it.
func (c *Client) DeleteMapAnnotations(ctx context.Context, objType string, objID int64, nsPrefix string) (int, error) {
	annotations, err := c.ListMapAnnotations(ctx, objType, objID, nsPrefix)
	if err != nil {
		return 0, err
	}

	for _, ann := range annotations {
		form := url.Values{
			"mapAnnotation": {"[]"},
			"annId":         {fmt.Sprintf("%d", ann.ID)},
			objType:         {fmt.Sprintf("%d", objID)},
		}
		if err := c.postForm(ctx, "/webclient/annotate_map/", form, nil); err != nil {
			return 0, fmt.Errorf("deleting annotation %d on %s %d: %w", ann.ID, objType, objID, err)
		}
	}

	if len(annotations) > 0 {
		c.log.Debug("Deleted map annotations",
			zap.String("type", objType),
			zap.Int64("id", objID),
			zap.String("ns", nsPrefix),
			zap.Int("count", len(annotations)))
	}
	return len(annotations), nil
}
