package services

import (
	"errors"
	"fmt"

	"food-ordering-api/statemachine"
	"food-ordering-api/store"
)

// Service errors. Handlers map them to status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalid           = errors.New("invalid request")
	ErrInvalidTransition = statemachine.ErrInvalidTransition
)

// notFound turns a store miss into ErrNotFound and passes anything else through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
