package server

import (
	"errors"
	"net/http"

	"github.com/oracle-dashboard/webhooks/webhook"
)

// Predefined http errors.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrBodyTooLarge     = errors.New("request body too large")
)

// Error is an error response with the http status code to send.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError returns an *Error for the known errors, nil otherwise.
func NewError(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, webhook.ErrDecode):
		return &Error{Code: http.StatusInternalServerError, Message: webhook.ErrDecode.Error()}
	case errors.Is(err, webhook.ErrInvalidSignature):
		return &Error{Code: http.StatusUnauthorized, Message: webhook.ErrInvalidSignature.Error()}
	case errors.Is(err, webhook.ErrUnknownProvider):
		return &Error{Code: http.StatusNotFound, Message: webhook.ErrUnknownProvider.Error()}
	case errors.Is(err, ErrBodyTooLarge):
		return &Error{Code: http.StatusRequestEntityTooLarge, Message: ErrBodyTooLarge.Error()}
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidParameter):
		return &Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	return nil
}
