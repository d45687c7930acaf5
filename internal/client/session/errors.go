package session

import (
	"errors"
	"fmt"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

// Error kinds. Match them with errors.Is on an *AuthError or *ProfileError.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakCredential     = errors.New("weak credential")
	ErrValidation         = errors.New("validation failed")
	ErrNetwork            = errors.New("network error")
)

// ErrNotSignedIn is the cause of a profile update attempted without a principal.
var ErrNotSignedIn = errors.New("not signed in")

// AuthError is returned by sign-in, sign-up and the initial session check.
type AuthError struct {
	Op   string
	Kind error
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *AuthError) Unwrap() []error { return unwrapPair(e.Kind, e.Err) }

// ProfileError is returned by UpdateProfile.
type ProfileError struct {
	Op   string
	Kind error
	Err  error
}

func (e *ProfileError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *ProfileError) Unwrap() []error { return unwrapPair(e.Kind, e.Err) }

func unwrapPair(kind, cause error) []error {
	if cause == nil {
		return []error{kind}
	}
	return []error{kind, cause}
}

func authError(op string, err error) *AuthError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return &AuthError{Op: op, Kind: ErrInvalidCredentials, Err: err}
	// A malformed email or display name is reported as unusable credentials.
	case errors.Is(err, ErrValidation), errors.Is(err, authdomain.ErrValidation):
		return &AuthError{Op: op, Kind: ErrInvalidCredentials, Err: err}
	case errors.Is(err, ErrEmailTaken):
		return &AuthError{Op: op, Kind: ErrEmailTaken, Err: err}
	case errors.Is(err, ErrWeakCredential), errors.Is(err, authdomain.ErrWeakCredential):
		return &AuthError{Op: op, Kind: ErrWeakCredential, Err: err}
	}
	return &AuthError{Op: op, Kind: ErrNetwork, Err: err}
}

func profileError(op string, err error) *ProfileError {
	if errors.Is(err, ErrValidation) || errors.Is(err, authdomain.ErrValidation) {
		return &ProfileError{Op: op, Kind: ErrValidation, Err: err}
	}
	return &ProfileError{Op: op, Kind: ErrNetwork, Err: err}
}
