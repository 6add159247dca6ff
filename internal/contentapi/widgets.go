package contentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// FetchWidgets returns the active widgets as undecoded records
func (c *Client) FetchWidgets(ctx context.Context) ([]json.RawMessage, error) {
	return c.fetchRaw(ctx, "slides")
}

// ListWidgets retrieves the active widgets, sorted by the service
func (c *Client) ListWidgets(ctx context.Context) ([]v1alpha1.Widget, error) {
	var widgets []v1alpha1.Widget
	if err := c.get(ctx, "slides", &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

// ListAllWidgets retrieves every widget, active or not. Requires a token.
func (c *Client) ListAllWidgets(ctx context.Context) ([]v1alpha1.Widget, error) {
	var widgets []v1alpha1.Widget
	if err := c.get(ctx, "slides/all", &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

// GetWidget retrieves a single widget by id
func (c *Client) GetWidget(ctx context.Context, id string) (*v1alpha1.Widget, error) {
	var widget v1alpha1.Widget
	if err := c.get(ctx, "slides/"+url.PathEscape(id), &widget); err != nil {
		return nil, err
	}
	return &widget, nil
}

// ToggleWidget flips a widget's active flag and returns the updated widget.
// Displays pick the change up on their next refresh.
func (c *Client) ToggleWidget(ctx context.Context, id string) (*v1alpha1.Widget, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, "slides/"+url.PathEscape(id)+"/toggle", nil)
	if err != nil {
		return nil, err
	}
	var widget v1alpha1.Widget
	if err := decodeResponse(resp, &widget); err != nil {
		return nil, err
	}
	return &widget, nil
}

// DeleteWidget removes a widget
func (c *Client) DeleteWidget(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "slides/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// ReorderWidgets assigns order 0..n-1 to the given ids
func (c *Client) ReorderWidgets(ctx context.Context, ids []string) error {
	resp, err := c.doRequest(ctx, http.MethodPatch, "slides/reorder", v1alpha1.ReorderRequest{Slides: ids})
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

func (c *Client) get(ctx context.Context, pathStr string, target interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, pathStr, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

func (c *Client) fetchRaw(ctx context.Context, pathStr string) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := c.get(ctx, pathStr, &records); err != nil {
		return nil, err
	}
	return records, nil
}
