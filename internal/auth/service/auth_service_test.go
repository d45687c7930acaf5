package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/auth/repository"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	email map[string]string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*domain.User{}, email: map[string]string{}}
}

func (m *memoryUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	m.email[u.Email] = u.ID
	return nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.email[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func setupService(t *testing.T, opts Options) (*AuthService, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewAuthService(newMemoryUsers(), repository.NewSessionRepository(client), opts), mr
}

func TestAuthService_SignUp(t *testing.T) {
	svc, _ := setupService(t, Options{RequireConfirmation: true})
	ctx := context.Background()

	t.Run("creates unconfirmed account with session", func(t *testing.T) {
		sess, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "Ada@Example.com", Password: "secret1", DisplayName: " Ada "})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.Equal(t, "ada@example.com", sess.Principal.Email)
		assert.Equal(t, "Ada", sess.Profile.DisplayName)
		assert.False(t, sess.Confirmed)
	})

	t.Run("rejects taken email", func(t *testing.T) {
		_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "ada@example.com", Password: "secret2"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "bob@example.com", Password: "12345"})
		assert.ErrorIs(t, err, domain.ErrWeakCredential)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "bob", Password: "123456"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthService_SignUpConfirmed(t *testing.T) {
	svc, _ := setupService(t, Options{RequireConfirmation: false})

	sess, err := svc.SignUp(context.Background(), domain.SignUpRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, sess.Confirmed)
}

func TestAuthService_SignInAndSession(t *testing.T) {
	svc, mr := setupService(t, Options{SessionTTL: time.Hour})
	ctx := context.Background()

	_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "ada@example.com", Password: "secret1", DisplayName: "Ada"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, domain.Credentials{Email: "ada@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, domain.Credentials{Email: "eve@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("session round trip", func(t *testing.T) {
		sess, err := svc.SignIn(ctx, domain.Credentials{Email: "ADA@example.com", Password: "secret1"})
		require.NoError(t, err)

		current, err := svc.Session(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.Principal, current.Principal)
		assert.Empty(t, current.Token)

		principal, err := svc.Verify(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.Principal.ID, principal.ID)

		require.NoError(t, svc.SignOut(ctx, sess.Token))
		_, err = svc.Session(ctx, sess.Token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		// signing out twice is fine
		assert.NoError(t, svc.SignOut(ctx, sess.Token))
	})

	t.Run("principal without a stored session", func(t *testing.T) {
		sess, err := svc.SignIn(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret1"})
		require.NoError(t, err)

		described, err := svc.PrincipalSession(ctx, sess.Principal.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.Principal, described.Principal)
		assert.Equal(t, "Ada", described.Profile.DisplayName)
		assert.Empty(t, described.Token)
		assert.True(t, described.ExpiresAt.IsZero())

		_, err = svc.PrincipalSession(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("session expires", func(t *testing.T) {
		sess, err := svc.SignIn(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret1"})
		require.NoError(t, err)

		mr.FastForward(2 * time.Hour)
		_, err = svc.Session(ctx, sess.Token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "ada@example.com", Password: "secret1", DisplayName: "Ada"})
	require.NoError(t, err)

	name := "Ada Lovelace"
	profile, err := svc.UpdateProfile(ctx, sess.Principal.ID, domain.ProfilePatch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.DisplayName)

	blank := ""
	_, err = svc.UpdateProfile(ctx, sess.Principal.ID, domain.ProfilePatch{DisplayName: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateProfile(ctx, "missing", domain.ProfilePatch{DisplayName: &name})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
