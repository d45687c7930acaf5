// Package gate decides whether project operations may run given the
// current session state.
package gate

import (
	"errors"

	"github.com/GoSim-25-26J-441/eprod/internal/client/session"
)

type Access int

const (
	Read Access = iota
	Write
)

type Decision int

const (
	// Suspend means the session check has not finished; nothing may run yet.
	Suspend Decision = iota
	PromptSignIn
	AwaitConfirmation
	Allow
)

func (d Decision) String() string {
	switch d {
	case PromptSignIn:
		return "prompt_sign_in"
	case AwaitConfirmation:
		return "await_confirmation"
	case Allow:
		return "allow"
	default:
		return "suspend"
	}
}

var (
	ErrSessionUnknown       = errors.New("session check still in progress")
	ErrSignInRequired       = errors.New("sign-in required")
	ErrConfirmationRequired = errors.New("account confirmation required")
)

// Policy controls what an account with an unconfirmed email may do.
type Policy struct {
	AllowUnconfirmedWrites bool
}

func DefaultPolicy() Policy {
	return Policy{AllowUnconfirmedWrites: true}
}

// Decide is a pure function of the session snapshot.
func Decide(snap session.Snapshot, policy Policy, access Access) Decision {
	switch snap.State {
	case session.Authenticated:
		return Allow
	case session.PendingConfirmation:
		if access == Write && !policy.AllowUnconfirmedWrites {
			return AwaitConfirmation
		}
		return Allow
	case session.Unauthenticated:
		return PromptSignIn
	default:
		return Suspend
	}
}

// Err maps a decision to the error a blocked caller receives, or nil for Allow.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case PromptSignIn:
		return ErrSignInRequired
	case AwaitConfirmation:
		return ErrConfirmationRequired
	default:
		return ErrSessionUnknown
	}
}

// Source is anything that can report the current session state.
type Source interface {
	Snapshot() session.Snapshot
}

type Gate struct {
	sessions Source
	policy   Policy
}

func New(sessions Source, policy Policy) *Gate {
	return &Gate{sessions: sessions, policy: policy}
}

// Check reads the session state at call time. The returned snapshot is the
// one the decision was made on.
func (g *Gate) Check(access Access) (session.Snapshot, error) {
	snap := g.sessions.Snapshot()
	return snap, Decide(snap, g.policy, access).Err()
}

// PromptRequired reports whether a sign-in or sign-up flow must be shown.
func (g *Gate) PromptRequired() bool {
	return Decide(g.sessions.Snapshot(), g.policy, Read) == PromptSignIn
}
