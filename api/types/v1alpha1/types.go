// Package v1alpha1 contains API types for the Wrale Kiosk display client.
package v1alpha1

import (
	"encoding/json"
	"time"
)

// APIVersion is the version string stamped on every object served by the client
const APIVersion = "v1alpha1"

// TypeMeta describes an individual object in an API response
type TypeMeta struct {
	// Kind is a string value representing the type of this object
	Kind string `json:"kind,omitempty"`
	// APIVersion defines the versioned schema of this object
	APIVersion string `json:"apiVersion,omitempty"`
}

// ListResponse wraps lists of items with metadata
type ListResponse struct {
	// Items contains the listed objects
	Items []interface{} `json:"items"`
	// TotalCount is the total number of matching items
	TotalCount int `json:"totalCount,omitempty"`
}

// ErrorResponse is the body returned by the Content Service and the local API on failure
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// parseTime accepts RFC3339 timestamps and bare dates. Empty and null
// values yield nil so an unset bound stays open.
func parseTime(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return nil, err
}

// pickID returns the first non-empty identifier among the given keys.
// Records from the Content Service carry "_id"; records produced by this
// client carry "id".
func pickID(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}
