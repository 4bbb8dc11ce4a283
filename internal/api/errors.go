// Package api provides the BactoCloud API client and its error types.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrAuthentication indicates a bad or expired API key (HTTP 401).
// Fatal: the whole run is aborted before any items are attempted.
var ErrAuthentication = errors.New("authentication failed")

// ErrPermission indicates the API key lacks a required scope (HTTP 403).
// The downloader needs PermDeviceView and PermDataView. Fatal.
var ErrPermission = errors.New("permission denied")

// APIError is returned for any other non-2xx API response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err indicates an authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsPermissionError reports whether err indicates a missing API key scope.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermission)
}

// IsFatal reports whether err should abort a whole download run rather
// than a single item. Authentication and permission failures cannot
// succeed on retry with the same key.
func IsFatal(err error) bool {
	return IsAuthError(err) || IsPermissionError(err)
}

// errorBody is the error envelope BactoCloud returns on failures:
// {"error": "message"}.
type errorBody struct {
	Error string `json:"error"`
}

// responseError converts a non-2xx response into a typed error, using
// the message from the response body when one is present.
func responseError(resp *http.Response) error {
	msg := resp.Status

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthentication, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrPermission, msg)
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
}
