package contentapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// decodeResponse decodes a JSON response into the provided target and
// closes the body
func decodeResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if err := handleResponse(resp); err != nil {
		return err
	}
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

// handleResponse processes an API response and returns an error if the status code indicates failure
func handleResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var apiErr v1alpha1.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return &StatusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	msg := apiErr.Error
	if msg == "" {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
