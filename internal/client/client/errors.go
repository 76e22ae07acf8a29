package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

const fallbackMessage = "Something went wrong. Please try again."

// FieldError is one entry of the validation array the backend returns.
// Older endpoints use msg/param, newer ones message/path.
type FieldError struct {
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Path    string `json:"path,omitempty"`
	Param   string `json:"param,omitempty"`
}

func (f FieldError) text() string {
	if m := firstNonEmpty(f.Message, f.Msg); m != "" {
		return m
	}
	field := firstNonEmpty(f.Path, f.Param, "Field")
	return field + ": Invalid value"
}

// TransportError means no usable response arrived: the connection failed,
// the body could not be read, or a 2xx body was not JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }

// ValidationError carries the backend's field-level errors. It wins over
// every other message source.
type ValidationError struct {
	StatusCode int
	Fields     []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.text())
	}
	return strings.Join(parts, ", ")
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == 401
}

// BusinessError is a 2xx response whose envelope reports a failure status.
type BusinessError struct {
	Status  int
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

func (e *BusinessError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}

// Message returns the text to show a user for err: the normalized backend
// message for API errors, a labeled generic text for transport failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		se *StatusError
		be *BusinessError
		te *TransportError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &be):
		return be.Error()
	case errors.As(err, &te):
		return "Unable to reach the server. Check your connection and try again."
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallbackMessage
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
