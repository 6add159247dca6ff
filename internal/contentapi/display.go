package contentapi

import (
	"context"
	"net/url"
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// DisplayStatus queries a display client's local API for its rotation status.
// The client must be created with the display's base URL.
func (c *Client) DisplayStatus(ctx context.Context) (*v1alpha1.DisplayStatus, error) {
	var status v1alpha1.DisplayStatus
	if err := c.get(ctx, "api/v1alpha1/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// WidgetStats queries a display client's proof-of-play summary for a widget
func (c *Client) WidgetStats(ctx context.Context, widgetID string, window time.Duration) (*v1alpha1.WidgetStats, error) {
	p := "api/v1alpha1/widgets/" + url.PathEscape(widgetID) + "/stats"
	if window > 0 {
		p += "?window=" + url.QueryEscape(window.String())
	}

	var stats v1alpha1.WidgetStats
	if err := c.get(ctx, p, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
