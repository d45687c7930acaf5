package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

type fakeBackend struct {
	mu sync.Mutex

	current    *authdomain.Session
	currentErr error
	// currentGate, when set, blocks Current until closed.
	currentGate chan struct{}

	accounts   map[string]string
	confirmed  bool
	signOutErr error
	signUpErr  error
	signUps    int

	profileErr     error
	profileEntered chan struct{}
	profileGate    chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{accounts: map[string]string{"ada@example.com": "secret1"}, confirmed: true}
}

func (f *fakeBackend) session(email string) *authdomain.Session {
	return &authdomain.Session{
		Token:     "ses_" + email,
		Principal: authdomain.Principal{ID: "id-" + email, Email: email},
		Profile:   authdomain.Profile{DisplayName: "Ada"},
		Confirmed: f.confirmed,
	}
}

func (f *fakeBackend) Current(ctx context.Context) (*authdomain.Session, error) {
	if f.currentGate != nil {
		select {
		case <-f.currentGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.current, f.currentErr
}

func (f *fakeBackend) SignIn(_ context.Context, creds authdomain.Credentials) (*authdomain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.accounts[creds.Email]; !ok || pw != creds.Password {
		return nil, ErrInvalidCredentials
	}
	return f.session(creds.Email), nil
}

func (f *fakeBackend) SignUp(_ context.Context, req authdomain.SignUpRequest) (*authdomain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if _, ok := f.accounts[req.Email]; ok {
		return nil, ErrEmailTaken
	}
	f.accounts[req.Email] = req.Password
	return f.session(req.Email), nil
}

func (f *fakeBackend) SignOut(context.Context) error { return f.signOutErr }

func (f *fakeBackend) UpdateProfile(ctx context.Context, patch authdomain.ProfilePatch) (*authdomain.Profile, error) {
	if f.profileEntered != nil {
		close(f.profileEntered)
	}
	if f.profileGate != nil {
		<-f.profileGate
	}
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &authdomain.Profile{DisplayName: *patch.DisplayName}, nil
}

func TestStart(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		m := NewManager(newFakeBackend())
		assert.True(t, m.Snapshot().Loading)
		assert.Equal(t, Unknown, m.Snapshot().State)

		require.NoError(t, m.Start(context.Background()))
		snap := m.Snapshot()
		assert.Equal(t, Unauthenticated, snap.State)
		assert.False(t, snap.Loading)
		assert.Nil(t, snap.Principal)
	})

	t.Run("existing unconfirmed session", func(t *testing.T) {
		b := newFakeBackend()
		b.confirmed = false
		b.current = b.session("ada@example.com")
		m := NewManager(b)

		require.NoError(t, m.Start(context.Background()))
		snap := m.Snapshot()
		assert.Equal(t, PendingConfirmation, snap.State)
		assert.True(t, snap.SignedIn())
		assert.Equal(t, "id-ada@example.com", snap.Principal.ID)
	})

	t.Run("failed check resolves to unauthenticated", func(t *testing.T) {
		b := newFakeBackend()
		b.currentErr = errors.New("dial tcp: refused")
		m := NewManager(b)

		err := m.Start(context.Background())
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Equal(t, Unauthenticated, m.Snapshot().State)
		assert.False(t, m.Snapshot().Loading)
	})

	t.Run("runs once", func(t *testing.T) {
		b := newFakeBackend()
		m := NewManager(b)
		require.NoError(t, m.Start(context.Background()))
		v := m.Snapshot().Version

		b.current = b.session("ada@example.com")
		require.NoError(t, m.Start(context.Background()))
		assert.Equal(t, v, m.Snapshot().Version)
		assert.Equal(t, Unauthenticated, m.Snapshot().State)
	})
}

func TestStart_SupersededBySignIn(t *testing.T) {
	b := newFakeBackend()
	b.currentGate = make(chan struct{})
	m := NewManager(b)

	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background()) }()

	_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	close(b.currentGate)
	require.NoError(t, <-done)

	snap := m.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, "ada@example.com", snap.Principal.Email)
}

func TestSignIn(t *testing.T) {
	m := NewManager(newFakeBackend())
	require.NoError(t, m.Start(context.Background()))

	_, err := m.SignIn(context.Background(), "ada@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "signin", authErr.Op)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, Unauthenticated, m.Snapshot().State)

	p, err := m.SignIn(context.Background(), " ada@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "id-ada@example.com", p.ID)
	assert.Equal(t, Authenticated, m.Snapshot().State)
	assert.Equal(t, "Ada", m.Snapshot().Profile.DisplayName)
}

func TestSignUp(t *testing.T) {
	t.Run("weak password never reaches the backend", func(t *testing.T) {
		b := newFakeBackend()
		m := NewManager(b)

		_, err := m.SignUp(context.Background(), "new@example.com", "12345", "New")
		assert.ErrorIs(t, err, ErrWeakCredential)
		assert.Zero(t, b.signUps)
	})

	t.Run("email taken", func(t *testing.T) {
		m := NewManager(newFakeBackend())
		_, err := m.SignUp(context.Background(), "ada@example.com", "secret1", "Ada")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("transport failure is a network error", func(t *testing.T) {
		b := newFakeBackend()
		b.signUpErr = errors.New("connection reset")
		m := NewManager(b)
		_, err := m.SignUp(context.Background(), "new@example.com", "secret1", "New")
		assert.ErrorIs(t, err, ErrNetwork)
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("unconfirmed account is pending", func(t *testing.T) {
		b := newFakeBackend()
		b.confirmed = false
		m := NewManager(b)
		p, err := m.SignUp(context.Background(), "new@example.com", "secret1", "New")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", p.Email)
		assert.Equal(t, PendingConfirmation, m.Snapshot().State)
	})
}

func TestSignOut_AlwaysClears(t *testing.T) {
	b := newFakeBackend()
	b.signOutErr = errors.New("offline")
	m := NewManager(b)
	_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	m.SignOut(context.Background())
	snap := m.Snapshot()
	assert.Equal(t, Unauthenticated, snap.State)
	assert.Nil(t, snap.Principal)
	assert.Nil(t, snap.Profile)

	m.SignOut(context.Background())
	assert.Equal(t, Unauthenticated, m.Snapshot().State)
}

func TestUpdateProfile(t *testing.T) {
	name := "Ada L."

	t.Run("requires a principal", func(t *testing.T) {
		m := NewManager(newFakeBackend())
		_, err := m.UpdateProfile(context.Background(), authdomain.ProfilePatch{DisplayName: &name})
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("replaces the cached profile", func(t *testing.T) {
		m := NewManager(newFakeBackend())
		_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)

		p, err := m.UpdateProfile(context.Background(), authdomain.ProfilePatch{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, name, p.DisplayName)
		assert.Equal(t, name, m.Snapshot().Profile.DisplayName)
	})

	t.Run("invalid patch", func(t *testing.T) {
		m := NewManager(newFakeBackend())
		_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)

		empty := "  "
		_, err = m.UpdateProfile(context.Background(), authdomain.ProfilePatch{DisplayName: &empty})
		var perr *ProfileError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ErrValidation, perr.Kind)
	})

	t.Run("backend failure keeps the old profile", func(t *testing.T) {
		b := newFakeBackend()
		b.profileErr = errors.New("timeout")
		m := NewManager(b)
		_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)

		_, err = m.UpdateProfile(context.Background(), authdomain.ProfilePatch{DisplayName: &name})
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Equal(t, "Ada", m.Snapshot().Profile.DisplayName)
	})

	t.Run("late result for a previous principal is dropped", func(t *testing.T) {
		b := newFakeBackend()
		b.profileEntered = make(chan struct{})
		b.profileGate = make(chan struct{})
		m := NewManager(b)
		_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := m.UpdateProfile(context.Background(), authdomain.ProfilePatch{DisplayName: &name})
			done <- err
		}()

		<-b.profileEntered
		m.SignOut(context.Background())
		close(b.profileGate)
		require.NoError(t, <-done)

		assert.Nil(t, m.Snapshot().Profile)
	})
}

func TestSubscribe_LatestValue(t *testing.T) {
	m := NewManager(newFakeBackend())
	ch, cancel := m.Subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, Unknown, first.State)

	require.NoError(t, m.Start(context.Background()))
	_, err := m.SignIn(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	latest := <-ch
	assert.Equal(t, Authenticated, latest.State)
	select {
	case s := <-ch:
		t.Fatalf("unexpected extra snapshot %v", s.State)
	default:
	}
}
