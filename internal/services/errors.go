package services

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HTTPError is returned when a remote API answers with a non-2xx status.
type HTTPError struct {
	Kind       error
	StatusCode int
	Message    string // Error message extracted from the body, if any
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Kind, e.StatusCode, bytes.TrimSpace(e.Body))
}

func (e *HTTPError) Unwrap() error { return e.Kind }

// ResponseError is returned when the feed reader reports a failure or an unexpected
// content shape. Content is kept verbatim for diagnostics.
type ResponseError struct {
	Kind    error
	Status  int
	Content json.RawMessage
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v (status %d):\n%s", e.Kind, e.Status, e.Pretty())
}

func (e *ResponseError) Unwrap() error { return e.Kind }

// Pretty returns Content indented for display, or as-is when it is not valid JSON.
func (e *ResponseError) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, e.Content, "", "  "); err != nil {
		return string(e.Content)
	}
	return buf.String()
}
