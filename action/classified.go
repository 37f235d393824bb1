package action

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-pos-console/api"
	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
)

// ClassifiedError is the one shape every failed backend call is reduced to.
// StatusCode is 0 when no HTTP response was received.
type ClassifiedError struct {
	StatusCode    int             `json:"statusCode"`
	Message       string          `json:"message"`
	DetailMessage string          `json:"detailMessage,omitempty"`
	ReferenceID   string          `json:"referenceId,omitempty"`
	RawPayload    json.RawMessage `json:"rawPayload,omitempty"`
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode == 0 {
		return e.Text()
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Text())
}

// Text is what a user should read: the detail message when the backend sent one.
func (e *ClassifiedError) Text() string {
	if e.DetailMessage != "" {
		return e.DetailMessage
	}
	return e.Message
}

// Unauthorized reports a 401; callers usually skip the modal since the login view follows.
func (e *ClassifiedError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Transport reports a failure with no HTTP response at all.
func (e *ClassifiedError) Transport() bool {
	return e.StatusCode == 0
}

// Classify normalizes any error into a ClassifiedError. A structured envelope
// is preferred over the generic error message, but StatusCode is always the
// HTTP status; the envelope's own statusCode stays in RawPayload. nil stays nil.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if apperrors.As(err, &classified) {
		return classified
	}

	var se *api.StatusError
	if apperrors.As(err, &se) {
		return fromStatusError(se)
	}

	msg := err.Error()
	switch {
	case apperrors.Is(err, context.Canceled):
		msg = "request cancelled"
	case apperrors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	}
	return &ClassifiedError{Message: msg}
}

func fromStatusError(se *api.StatusError) *ClassifiedError {
	c := &ClassifiedError{
		StatusCode:    se.StatusCode,
		Message:       se.PayloadMessage(),
		DetailMessage: se.DetailMessage(),
		ReferenceID:   se.ReferenceID(),
	}
	if c.Message == "" {
		c.Message = http.StatusText(se.StatusCode)
	}
	if json.Valid(se.Body) {
		c.RawPayload = json.RawMessage(se.Body)
	} else if len(se.Body) > 0 {
		c.RawPayload, _ = json.Marshal(string(se.Body))
	}
	return c
}
