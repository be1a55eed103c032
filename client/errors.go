package client

import (
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/xerrors"
)

// NetworkError means the request could not be sent or no response arrived.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a response with a non-2xx status code.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error. status code: %d, url: %s", e.StatusCode, e.URL)
}

// Message returns the "error" field of a JSON error body, if any.
func (e *HTTPError) Message() string {
	if !gjson.ValidBytes(e.Body) {
		return ""
	}
	msg := gjson.GetBytes(e.Body, "error")
	if msg.Type != gjson.String {
		return ""
	}
	return msg.String()
}

// ParseError means the response body is not the expected JSON document.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse response for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsNetworkError(err error) bool {
	var e *NetworkError
	return xerrors.As(err, &e)
}

func IsParseError(err error) bool {
	var e *ParseError
	return xerrors.As(err, &e)
}

// AsHTTPError returns the HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var e *HTTPError
	if xerrors.As(err, &e) {
		return e, true
	}
	return nil, false
}
