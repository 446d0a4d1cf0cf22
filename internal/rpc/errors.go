package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrEmptyResponse is returned when the authority answers 2xx without the
// row a call expects.
var ErrEmptyResponse = errors.New("no response from server")

// TransportError means the authority could not be reached at all: DNS,
// refused connection, timeout, cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: transport: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// BackendError means the authority answered with a non-2xx status.
// Message is the best human-readable reason found in the body.
type BackendError struct {
	Op      string
	Status  int
	Message string
	Body    []byte
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsBackend unwraps a BackendError from err.
func AsBackend(err error) (*BackendError, bool) {
	var be *BackendError
	ok := errors.As(err, &be)
	return be, ok
}

// messageFrom picks the first non-empty reason field of an error body.
// PostgREST uses "message", edge functions use "error", the auth API uses
// "msg" or "error_description".
func messageFrom(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error", "msg", "error_description"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	if txt := strings.TrimSpace(string(body)); txt != "" && len(txt) <= 200 && !gjson.ValidBytes(body) {
		return txt
	}
	return http.StatusText(status)
}
