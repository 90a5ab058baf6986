package scene

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why an attempt failed. Every kind is terminal for the attempt.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindTransport     Kind = "transport"
	KindParse         Kind = "parse"
	KindShape         Kind = "shape"
	// KindConsistency is only produced by strict validation.
	KindConsistency Kind = "consistency"
)

// Error is a human-readable message plus a machine-distinguishable Kind.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int // upstream HTTP status for transport errors, 0 otherwise
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind onto a status code for the web surface.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindConfiguration:
		return http.StatusBadRequest
	case KindTransport, KindParse:
		return http.StatusBadGateway
	case KindShape, KindConsistency:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func Configurationf(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Transport builds a transport error. When message is empty a status-derived message is used.
func Transport(status int, message string, err error) *Error {
	if message == "" {
		if status > 0 {
			message = fmt.Sprintf("API Error: %d", status)
		} else if err != nil {
			message = fmt.Sprintf("API request failed: %v", err)
		} else {
			message = "API request failed"
		}
	}
	return &Error{Kind: KindTransport, Message: message, StatusCode: status, Err: err}
}

func Parsef(err error, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...), Err: err}
}

func Shapef(format string, args ...any) *Error {
	return &Error{Kind: KindShape, Message: fmt.Sprintf(format, args...)}
}

func Consistencyf(format string, args ...any) *Error {
	return &Error{Kind: KindConsistency, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not a scene error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
