// Package httperr defines the domain error kinds and their wire shape.
// Every error the API returns serializes as {"message": ...} with the
// status code owned by the kind, so handlers never pick statuses ad hoc.
package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindValidation
	KindAlreadyExist
	KindNotFound
	KindUnauthorized
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error // wrapped cause, logged but never sent to the client
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAlreadyExist:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func AlreadyExist(message string) *Error {
	return &Error{Kind: KindAlreadyExist, Message: message}
}

func NotFound(message string) *Error {
	if message == "" {
		message = "404 not found"
	}
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

type wireError struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Write sends err to the client. Unknown error values are treated as
// internal: the cause goes to the log, the client gets a generic message.
func Write(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var he *Error
	if !errors.As(err, &he) {
		he = Internal(err)
	}
	if he.Kind == KindInternal && logger != nil {
		logger.Error(he.Error(),
			slog.String("request_method", r.Method),
			slog.String("request_url", r.URL.String()),
		)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(he.Status())
	_ = json.NewEncoder(w).Encode(wireError{Message: he.Message, Details: he.Details})
}
