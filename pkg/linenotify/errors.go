package linenotify

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is returned when the Notifier was built with an empty token.
	ErrMissingToken = errors.New("linenotify: access token is required")
	// ErrMissingPayload is returned when nothing sendable is configured.
	ErrMissingPayload = errors.New("linenotify: message, image URL pair or image file is required")
	// ErrInconsistentImagePair is returned when only one of the thumbnail and
	// fullsize URLs is set.
	ErrInconsistentImagePair = errors.New("linenotify: image thumbnail and fullsize URLs must be set together")
)

// FileReadError reports a failure reading the image file.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("linenotify: reading image file %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// TransportError reports a failure at the HTTP layer (DNS, connect, TLS, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("linenotify: send failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
