package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error into the HTTP status it maps to.
type Kind int

const (
	KindValidation Kind = iota // 400
	KindAuth                   // 401
	KindNotFound               // 404
	KindUpstream               // 500, external API or database failure
	KindDecryption             // 500, credential blob could not be decrypted
)

// APIError is the error type every handler boundary converts to a JSON
// envelope. Message is safe for clients; Err carries the internal cause.
type APIError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *APIError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation builds a 400 error.
func Validation(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Auth builds a 401 error.
func Auth(message string) *APIError {
	return &APIError{Kind: KindAuth, Message: message}
}

// NotFound builds a 404 error.
func NotFound(resource string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// Upstream builds a 500 error wrapping an external API or database failure.
// The upstream message is forwarded to the caller.
func Upstream(message string, err error) *APIError {
	return &APIError{Kind: KindUpstream, Message: message, Err: err}
}

// Decryption builds a 500 error for an unreadable credential blob.
func Decryption(err error) *APIError {
	return &APIError{Kind: KindDecryption, Message: "failed to decrypt client credential", Err: err}
}

// From converts any error into an APIError. Already-classified errors pass
// through; everything else becomes an upstream failure.
func From(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: KindUpstream, Message: err.Error(), Err: err}
}
