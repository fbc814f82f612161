// Package service implements the booking, tournament and shop use cases on
// top of the repositories.  Each mutating operation runs in one database
// transaction; events and metrics are emitted only after commit.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError names the offending input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// ConflictError is returned when a station or tournament cannot take the
// request.  Until, when set, is the instant the blocking booking ends.
type ConflictError struct {
	Msg   string
	Until *time.Time
}

func (e *ConflictError) Error() string { return e.Msg }

func (e *ConflictError) Unwrap() error { return ErrConflict }

func conflict(msg string) error { return &ConflictError{Msg: msg} }

// StateError reports a transition that the current status forbids.
type StateError struct{ Msg string }

func (e *StateError) Error() string { return e.Msg }

func (e *StateError) Unwrap() error { return ErrInvalidState }

// notFound wraps ErrNotFound with the entity name.
func notFound(what string) error { return fmt.Errorf("%s %w", what, ErrNotFound) }

// fromRepo translates repository sentinels for the entity named what.
func fromRepo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(what)
	case errors.Is(err, repository.ErrForbidden):
		return ErrForbidden
	case errors.Is(err, repository.ErrConflict):
		return conflict(what + " already exists")
	}
	return err
}

// outcome classifies err for metric labels.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	}
	return "error"
}
