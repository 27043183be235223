package client

import (
	"errors"
	"fmt"
)

// ErrResponse is the common ancestor of every non-2xx outcome; use
// errors.Is(err, ErrResponse) to tell a rejected request from a transport
// failure.
var ErrResponse = errors.New("request rejected by server")

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// ResponseError carries the request coordinates and body of a non-2xx
// response. It matches ErrResponse and the sentinel for its status class.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *ResponseError) Is(target error) bool {
	if target == ErrResponse {
		return true
	}
	return target == sentinelFor(e.StatusCode)
}

func sentinelFor(status int) error {
	switch {
	case status == 400:
		return ErrBadRequest
	case status == 401:
		return ErrUnauthorized
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status == 409:
		return ErrConflict
	case status >= 500:
		return ErrServer
	default:
		return nil
	}
}
