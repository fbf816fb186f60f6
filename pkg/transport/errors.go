package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrRequestFailed matches every failure of a request: connection errors and
// non-2xx responses.
var ErrRequestFailed = errors.New("request failed")

// FieldError lists the messages kintone reports for one request field.
type FieldError struct {
	Messages []string `json:"messages"`
}

// Error is a non-2xx response. Code, ID, Message and Errors are parsed from
// the kintone error body when present.
type Error struct {
	Method     string
	Path       string
	StatusCode int

	// Code is the kintone error code, e.g. "GAIA_RE01".
	Code string
	// ID identifies the failed request on the server side.
	ID      string
	Message string
	Errors  map[string]FieldError
}

// errorBody is the JSON error document returned by kintone.
type errorBody struct {
	Code    string                `json:"code"`
	ID      string                `json:"id"`
	Message string                `json:"message"`
	Errors  map[string]FieldError `json:"errors"`
}

func newError(method, path string, statusCode int, body []byte) *Error {
	e := &Error{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && (parsed.Code != "" || parsed.Message != "") {
		e.Code = parsed.Code
		e.ID = parsed.ID
		e.Message = parsed.Message
		e.Errors = parsed.Errors
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(statusCode)
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: API returned status %d", e.Method, e.Path, e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " (id: %s)", e.ID)
	}

	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for field := range e.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(&b, "; %s: %s", field, strings.Join(e.Errors[field].Messages, ", "))
		}
	}
	return b.String()
}

// Unwrap allows errors.Is(err, ErrRequestFailed).
func (e *Error) Unwrap() error {
	return ErrRequestFailed
}

// Retryable reports whether the server rejected the request without
// processing it.
func (e *Error) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}
