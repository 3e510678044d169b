package reportapi

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// AuthError is a failed login or an expired/invalid token (401).
// Message carries the server-provided text verbatim when present; views fall
// back to their own generic wording when it is empty.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// ConflictError is a 409 on user creation: the email or username is taken.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return "conflict"
	}
	return e.Message
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

func IsAuth(err error) bool {
	_, ok := errors.Cause(err).(*AuthError)
	return ok
}

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

// newStatusError maps a non-2xx response to an error type, pulling the
// server's message out of the usual {"message": ...} / {"error": ...} shapes.
func newStatusError(code int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}

	switch code {
	case http.StatusUnauthorized:
		return &AuthError{Message: msg}
	case http.StatusConflict:
		return &ConflictError{Message: msg}
	}
	return &APIError{StatusCode: code, Message: msg}
}
