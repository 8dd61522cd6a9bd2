package gateway

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failed tool call.
type ErrorKind string

const (
	KindUnknownTool     ErrorKind = "unknown_tool"
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindUpstream        ErrorKind = "upstream"
	KindTransport       ErrorKind = "transport"
)

// Error is returned by CallTool for every failure.
type Error struct {
	Kind   ErrorKind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode is the HTTP status reported to the caller.
func (e *Error) StatusCode() int {
	return e.Status
}

func unknownTool(name string) *Error {
	return &Error{
		Kind:   KindUnknownTool,
		Status: http.StatusNotFound,
		Detail: "Tool '" + name + "' not found",
	}
}

func invalidArgument(detail string) *Error {
	return &Error{Kind: KindInvalidArgument, Status: http.StatusBadRequest, Detail: detail}
}

func upstream(status int, detail string) *Error {
	return &Error{Kind: KindUpstream, Status: status, Detail: detail}
}

func transport(err error) *Error {
	return &Error{Kind: KindTransport, Status: http.StatusInternalServerError, Detail: err.Error(), Err: err}
}

// KindOf extracts the kind of a gateway error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}
