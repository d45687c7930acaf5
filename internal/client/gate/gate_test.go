package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/client/session"
)

func TestDecide(t *testing.T) {
	strict := Policy{AllowUnconfirmedWrites: false}

	cases := []struct {
		name   string
		state  session.State
		policy Policy
		access Access
		want   Decision
	}{
		{"unknown read", session.Unknown, DefaultPolicy(), Read, Suspend},
		{"unknown write", session.Unknown, DefaultPolicy(), Write, Suspend},
		{"signed out", session.Unauthenticated, DefaultPolicy(), Write, PromptSignIn},
		{"signed in", session.Authenticated, strict, Write, Allow},
		{"pending read strict", session.PendingConfirmation, strict, Read, Allow},
		{"pending write strict", session.PendingConfirmation, strict, Write, AwaitConfirmation},
		{"pending write default", session.PendingConfirmation, DefaultPolicy(), Write, Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(session.Snapshot{State: tc.state}, tc.policy, tc.access))
		})
	}
}

type stubSource struct{ snap session.Snapshot }

func (s *stubSource) Snapshot() session.Snapshot { return s.snap }

func TestGate_ChecksAtCallTime(t *testing.T) {
	src := &stubSource{snap: session.Snapshot{State: session.Unknown, Loading: true}}
	g := New(src, DefaultPolicy())

	_, err := g.Check(Write)
	assert.ErrorIs(t, err, ErrSessionUnknown)
	assert.False(t, g.PromptRequired())

	src.snap = session.Snapshot{State: session.Unauthenticated}
	_, err = g.Check(Read)
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.True(t, g.PromptRequired())

	src.snap = session.Snapshot{State: session.Authenticated, Principal: &authdomain.Principal{ID: "u1"}}
	snap, err := g.Check(Write)
	require.NoError(t, err)
	assert.Equal(t, "u1", snap.Principal.ID)
}
