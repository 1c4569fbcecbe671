package ai

import "fmt"

// ImageNotFoundError reports a missing image file on disk.
type ImageNotFoundError struct {
	Path string
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("Image file not found: %s", e.Path)
}

// MalformedResponseError reports a model reply that violates the JSON
// contract after code fences were stripped. Raw holds the offending text for
// server-side diagnosis; it must never be exposed to API clients.
type MalformedResponseError struct {
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("Invalid JSON response from evaluation API: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
