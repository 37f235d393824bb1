package api

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

// Envelope is the generic response wrapper every backend endpoint returns.
type Envelope[T any] struct {
	// Status is a short outcome label.
	// Example: "success", "error"
	Status string `json:"status"`

	// StatusCode mirrors the HTTP status of the response.
	// Example: 400
	StatusCode int `json:"statusCode"`

	// Payload is the endpoint-specific body. On failures it may carry {"message": "..."}.
	Payload T `json:"payload"`

	// Error is only present on failures.
	Error *ErrorBody `json:"error,omitempty"`

	// Pagination is only present on list endpoints.
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorBody is the structured failure block of the envelope.
type ErrorBody struct {
	// DetailMessage is the human readable reason.
	// Example: "Name is required"
	DetailMessage string `json:"detailMessage,omitempty"`

	// ReferenceID correlates the failure with backend logs for support.
	// Example: "3f1b8c0e-2b8d-4a55-9d0e-7c1f9d0a11aa"
	ReferenceID string `json:"referenceId,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// MessagePayload is the payload shape of endpoints that only return a message,
// and of most failure responses.
type MessagePayload struct {
	Message string `json:"message,omitempty"`
}

// TokenPayload is returned by POST /auth/refresh and POST /auth/signin.
type TokenPayload struct {
	// AccessToken is an opaque bearer credential.
	// Usage: Authorization: Bearer <accessToken>
	AccessToken string `json:"accessToken"`

	// RefreshToken is also set as an http-only cookie; the body copy is informational.
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresAt is when the access token stops being accepted.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// OAuth2Token converts the payload into the x/oauth2 token type.
func (p TokenPayload) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       p.ExpiresAt,
	}
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignOutRequest is the body of POST /auth/signout.
type SignOutRequest struct {
	DeviceID             string `json:"deviceId,omitempty"`
	LastNotificationSeen string `json:"lastNotificationSeen,omitempty"`
}

// rawEnvelope keeps the payload undecoded for error classification.
type rawEnvelope = Envelope[json.RawMessage]
