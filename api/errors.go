package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Envelope is nil when the body was not a JSON envelope.
	Envelope *Envelope[json.RawMessage]
	Body     []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if detail := e.DetailMessage(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Unwrap lets errors.Is match the session sentinels.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	}
	return nil
}

// DetailMessage returns error.detailMessage, or "" when absent.
func (e *StatusError) DetailMessage() string {
	if e.Envelope == nil || e.Envelope.Error == nil {
		return ""
	}
	return e.Envelope.Error.DetailMessage
}

// ReferenceID returns error.referenceId, or "" when absent.
func (e *StatusError) ReferenceID() string {
	if e.Envelope == nil || e.Envelope.Error == nil {
		return ""
	}
	return e.Envelope.Error.ReferenceID
}

// PayloadMessage returns payload.message when the payload is an object carrying one.
func (e *StatusError) PayloadMessage() string {
	if e.Envelope == nil || len(e.Envelope.Payload) == 0 {
		return ""
	}
	var m MessagePayload
	if err := json.Unmarshal(e.Envelope.Payload, &m); err != nil {
		return ""
	}
	return m.Message
}

// IsUnauthorized reports whether err is, or wraps, a 401 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return apperrors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
