package projectstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// Error kinds carried by *StoreError.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNetwork      = errors.New("network error")
	ErrValidation   = errors.New("validation failed")
)

var (
	errSessionChanged = errors.New("session changed while the request was in flight")
	errNoPrincipal    = errors.New("store has no principal")
	errForeignOwner   = errors.New("record belongs to another owner")
)

// StoreError is returned by every Store operation that fails.
type StoreError struct {
	Op   string
	ID   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	msg := e.Op
	if e.ID != "" {
		msg += " " + e.ID
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil && e.Err != e.Kind {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify maps a remote failure onto a kind. Anything unrecognised,
// including timeouts, is a network error.
func classify(op, id string, err error) *StoreError {
	var kind error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = ErrNetwork
	case errors.Is(err, ErrValidation), errors.Is(err, domain.ErrValidation):
		kind = ErrValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, domain.ErrNotFound):
		kind = ErrNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, domain.ErrUnauthorized):
		kind = ErrUnauthorized
	default:
		kind = ErrNetwork
	}
	return &StoreError{Op: op, ID: id, Kind: kind, Err: err}
}
