package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Client-side error codes. Backend domain codes (C.ITDx0001, ...) live in
// the catalog package.
const (
	CodeNetwork  = "NETWORK_ERROR"
	CodeTimeout  = "TIMEOUT"
	CodeCanceled = "CANCELED"
	CodeNoToken  = "NO_TOKEN"
	CodeDecode   = "DECODE_ERROR"
)

// Error is returned for every failed request. Status is 0 when no response
// was received.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Status != 0:
		return fmt.Sprintf("api: %s (status %d, code %s)", e.Message, e.Status, e.Code)
	case e.Code != "":
		return fmt.Sprintf("api: %s (%s)", e.Message, e.Code)
	default:
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an *Error carrying code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsAuth reports whether err is a 401 or 403 response.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// CodeOf returns the code of an *Error, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// transportError classifies a failure that produced no HTTP response.
func transportError(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Code: CodeCanceled, Message: "request canceled", Err: err}
	default:
		return &Error{Code: CodeNetwork, Message: "connection failure", Err: err}
	}
}

// errorBody covers both the {message, errorCode} and the
// {success:false, errorCode, data} shapes.
type errorBody struct {
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorCode"`
	Data      json.RawMessage `json:"data"`
}

// responseError builds an *Error from a non-2xx response body.
func responseError(status int, body []byte) *Error {
	e := &Error{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Code = eb.ErrorCode
		e.Message = eb.Message
		if e.Message == "" {
			var s string
			if json.Unmarshal(eb.Data, &s) == nil {
				e.Message = s
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		e.Message = text
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}
	return e
}
