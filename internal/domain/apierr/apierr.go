// Package apierr classifies provider failures into the three kinds every
// adapter must reduce its upstream error shapes to. Nothing provider
// specific escapes past an adapter boundary.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates the failure classes.
type Kind int

const (
	// KindNetwork: the request never reached the server (DNS, refused
	// connection, timeout).
	KindNetwork Kind = iota + 1
	// KindHTTPStatus: the server answered with a non-2xx status.
	KindHTTPStatus
	// KindApplication: a 2xx response whose body signals a provider
	// failure (rate limit note, invalid symbol, malformed query).
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindApplication:
		return "application"
	}
	return "unknown"
}

// Error is a classified provider failure.
type Error struct {
	Kind     Kind
	Provider string
	Status   int // set for KindHTTPStatus
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Network wraps a transport failure.
func Network(provider string, cause error) *Error {
	return &Error{
		Kind:     KindNetwork,
		Provider: provider,
		Message:  fmt.Sprintf("unable to connect: %v", cause),
		cause:    cause,
	}
}

// HTTPStatus wraps a non-2xx response.
func HTTPStatus(provider string, status int) *Error {
	return &Error{
		Kind:     KindHTTPStatus,
		Provider: provider,
		Status:   status,
		Message:  fmt.Sprintf("HTTP %d %s", status, http.StatusText(status)),
	}
}

// Application wraps a provider-signaled failure embedded in a 2xx body.
func Application(provider, message string) *Error {
	return &Error{Kind: KindApplication, Provider: provider, Message: message}
}

// KindOf returns the classified kind, or 0 when err is not a provider error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
