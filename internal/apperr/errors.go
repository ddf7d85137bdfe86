// Package apperr defines the error taxonomy shared across the client core.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired means the action needs a session and none is present.
	// No request has been sent when this is returned.
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
)

// RequestError is a normalized transport or HTTP failure. Status is the
// HTTP status code, or 0 when the request never completed.
type RequestError struct {
	Status int
	Detail string
	Err    error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("request failed (%d): %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("request failed (%d)", e.Status)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Message returns the server-supplied detail, or fallback when the server
// sent none.
func (e *RequestError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// Detail extracts the server-supplied message from err, falling back to the
// given text for non-request errors or detail-less responses.
func Detail(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message(fallback)
	}
	return fallback
}

// IsStatus reports whether err is a RequestError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == status
}

// ShapeError means a list response arrived in an envelope the client does
// not recognize. It is a diagnostic: callers degrade to an empty result
// instead of failing the view.
type ShapeError struct {
	Endpoint string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unrecognized response shape from %s", e.Endpoint)
}
