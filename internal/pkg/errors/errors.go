package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks input rejected before any I/O happens.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream marks a failure in an external dependency (download, ffmpeg, recognizer).
	ErrUpstream = errors.New("upstream failure")
)
