package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any ResponseError with a 404 status
var ErrNotFound = errors.New("not found")

// TransportError means no response reached us: network failure, timeout or cancellation
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError means the remote answered with a non-2xx status
type ResponseError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *ResponseError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP error from %s: %s", e.URL, status)
}

func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none
func StatusCode(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}
