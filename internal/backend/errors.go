package backend

import (
	"errors"
	"fmt"
)

// Kind categorizes a failed operation.
type Kind string

const (
	KindValidation Kind = "validation" // rejected locally, never sent
	KindNetwork    Kind = "network"    // transport failure or non-2xx status
	KindTimeout    Kind = "timeout"    // client deadline exceeded
	KindBackend    Kind = "backend"    // 2xx whose message reports a failure
	KindDecode     Kind = "decode"     // response body is not the expected JSON
)

// User-facing prefixes for each kind
var kindPrefixes = map[Kind]string{
	KindValidation: "Invalid input",
	KindNetwork:    "Network error",
	KindTimeout:    "Request timed out",
	KindBackend:    "Backend error",
	KindDecode:     "Unexpected response",
}

// Error is returned by every client operation that fails.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	RequestID  string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown in the UI. Backend failures are surfaced
// verbatim.
func (e *Error) UserMessage() string {
	if e.Kind == KindBackend {
		return e.Message
	}
	prefix := kindPrefixes[e.Kind]
	if prefix == "" {
		prefix = "Error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d - %s", prefix, e.StatusCode, e.Message)
	}
	return prefix + ": " + e.Message
}

// NewValidationError builds a KindValidation error
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err. Errors not produced by this package are
// reported as network failures; nil yields "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindNetwork
}

// IsTimeout reports whether err is a client-side timeout
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// UserMessage returns a display string for any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.UserMessage()
	}
	return "Error: " + err.Error()
}
