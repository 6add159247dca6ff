package contentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// FetchAnnouncements returns every announcement as undecoded records
func (c *Client) FetchAnnouncements(ctx context.Context) ([]json.RawMessage, error) {
	return c.fetchRaw(ctx, "announcements")
}

// ListAnnouncements retrieves every announcement, newest first
func (c *Client) ListAnnouncements(ctx context.Context) ([]v1alpha1.Announcement, error) {
	var items []v1alpha1.Announcement
	if err := c.get(ctx, "announcements", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ToggleAnnouncement flips an announcement between active and inactive
func (c *Client) ToggleAnnouncement(ctx context.Context, id string) (*v1alpha1.Announcement, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, "announcements/"+url.PathEscape(id)+"/toggle", nil)
	if err != nil {
		return nil, err
	}
	var announcement v1alpha1.Announcement
	if err := decodeResponse(resp, &announcement); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// DeleteAnnouncement removes an announcement
func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "announcements/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
