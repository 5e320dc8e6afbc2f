package apimodels

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a user action can end in.
type ErrorKind string

const (
	MissingCredential    ErrorKind = "MissingCredential"
	InvalidInput         ErrorKind = "InvalidInput"
	AuthenticationFailed ErrorKind = "AuthenticationFailed"
	TransportError       ErrorKind = "TransportError"
	ServiceError         ErrorKind = "ServiceError"
	RenderError          ErrorKind = "RenderError"
)

// Error is the error type surfaced to the UI.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. Errors outside the
// taxonomy are reported as TransportError.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return TransportError
}

// UserMessage is the human-readable text shown for an error of the given kind.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "The request failed unexpectedly. Please try again."
	}
	switch e.Kind {
	case MissingCredential:
		return "Enter your API key before running an analysis."
	case InvalidInput:
		return "Invalid input: " + e.Message
	case AuthenticationFailed:
		return "The prediction service rejected the API key. Check the key and submit again."
	case TransportError:
		return "The prediction service could not be reached: " + e.Message
	case ServiceError:
		return "The prediction service rejected the request: " + e.Message
	case RenderError:
		return "The prediction service returned a result that could not be displayed: " + e.Message
	}
	return e.Message
}

// ErrorResponse is the JSON body returned by the API bridge on failure.
type ErrorResponse struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
