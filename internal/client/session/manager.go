package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
)

// State is the authentication state of a Manager.
type State int

const (
	Unknown State = iota
	Unauthenticated
	PendingConfirmation
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case PendingConfirmation:
		return "pending_confirmation"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	State     State
	Principal *authdomain.Principal
	Profile   *authdomain.Profile
	Loading   bool
	Version   uint64
}

// SignedIn reports whether a principal is present, confirmed or not.
func (s Snapshot) SignedIn() bool {
	return s.State == Authenticated || s.State == PendingConfirmation
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Principal != nil {
		p := *s.Principal
		out.Principal = &p
	}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	return out
}

// Backend is the remote session collaborator. Current returns (nil, nil)
// when there is no session.
type Backend interface {
	Current(ctx context.Context) (*authdomain.Session, error)
	SignIn(ctx context.Context, creds authdomain.Credentials) (*authdomain.Session, error)
	SignUp(ctx context.Context, req authdomain.SignUpRequest) (*authdomain.Session, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch authdomain.ProfilePatch) (*authdomain.Profile, error)
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = logging.OrNop(l) }
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithMinPasswordLength(n int) Option {
	return func(m *Manager) { m.minPassword = n }
}

// Manager owns the current principal and profile.
type Manager struct {
	backend     Backend
	logger      *zap.Logger
	timeout     time.Duration
	minPassword int

	mu      sync.Mutex
	snap    Snapshot
	started bool
	// intent counts sign-in, sign-up and sign-out calls; a result is applied
	// only if no newer call was made in the meantime.
	intent uint64
	subs   map[int]chan Snapshot
	nextID int
}

func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:     backend,
		logger:      zap.NewNop(),
		timeout:     15 * time.Second,
		minPassword: authdomain.MinPasswordLength,
		snap:        Snapshot{State: Unknown, Loading: true},
		subs:        make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("session")
	return m
}

// Start runs the initial session check. Only the first call does any work.
// A failed check resolves to Unauthenticated so the state never stays Unknown.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	sess, err := m.backend.Current(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	// A sign-in, sign-up or sign-out that completed first wins.
	if m.snap.State != Unknown {
		m.logger.Debug("initial session check superseded")
		return nil
	}
	if err != nil {
		m.logger.Warn("initial session check failed", zap.Error(err))
		m.setLocked(Snapshot{State: Unauthenticated})
		return &AuthError{Op: "session", Kind: ErrNetwork, Err: err}
	}
	if sess == nil {
		m.setLocked(Snapshot{State: Unauthenticated})
		return nil
	}
	m.setLocked(signedIn(sess))
	return nil
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// Subscribe delivers the current state and then every change. Slow readers
// only see the latest state. Call cancel to release the channel.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- m.snap.clone()
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*authdomain.Principal, error) {
	intent := m.beginIntent()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	sess, err := m.backend.SignIn(ctx, authdomain.Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		m.logger.Debug("sign-in failed", zap.Error(err))
		return nil, authError("signin", err)
	}
	return m.finish(intent, "signin", sess), nil
}

// SignUp checks the password length before contacting the backend.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*authdomain.Principal, error) {
	if err := authdomain.CheckPassword(password, m.minPassword); err != nil {
		return nil, &AuthError{Op: "signup", Kind: ErrWeakCredential, Err: err}
	}
	intent := m.beginIntent()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	sess, err := m.backend.SignUp(ctx, authdomain.SignUpRequest{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	})
	if err != nil {
		m.logger.Debug("sign-up failed", zap.Error(err))
		return nil, authError("signup", err)
	}
	return m.finish(intent, "signup", sess), nil
}

// SignOut clears local state first and then tells the backend. A backend
// failure is logged and otherwise ignored.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	m.intent++
	m.setLocked(Snapshot{State: Unauthenticated})
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.backend.SignOut(ctx); err != nil {
		m.logger.Warn("remote sign-out failed", zap.Error(err))
	}
}

// UpdateProfile replaces the cached profile with the backend's result. The
// result is dropped if the principal changed while the call was in flight.
func (m *Manager) UpdateProfile(ctx context.Context, patch authdomain.ProfilePatch) (*authdomain.Profile, error) {
	m.mu.Lock()
	var owner string
	if m.snap.Principal != nil {
		owner = m.snap.Principal.ID
	}
	m.mu.Unlock()

	if owner == "" {
		return nil, &ProfileError{Op: "update_profile", Kind: ErrValidation, Err: ErrNotSignedIn}
	}
	if err := patch.Validate(); err != nil {
		return nil, profileError("update_profile", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	profile, err := m.backend.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, profileError("update_profile", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap.Principal == nil || m.snap.Principal.ID != owner {
		m.logger.Debug("discarding profile for previous principal", zap.String("principal", owner))
		out := *profile
		return &out, nil
	}
	next := m.snap
	p := *profile
	next.Profile = &p
	m.setLocked(next)
	out := *profile
	return &out, nil
}

func (m *Manager) beginIntent() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intent++
	return m.intent
}

// finish applies a successful sign-in or sign-up unless a newer call won.
func (m *Manager) finish(intent uint64, op string, sess *authdomain.Session) *authdomain.Principal {
	principal := sess.Principal

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.intent != intent {
		m.logger.Debug("session result superseded", zap.String("op", op))
		return &principal
	}
	m.setLocked(signedIn(sess))
	m.logger.Info("signed in", zap.String("op", op), zap.String("principal", principal.ID), zap.Bool("confirmed", sess.Confirmed))
	return &principal
}

func signedIn(sess *authdomain.Session) Snapshot {
	state := Authenticated
	if !sess.Confirmed {
		state = PendingConfirmation
	}
	principal := sess.Principal
	profile := sess.Profile
	return Snapshot{State: state, Principal: &principal, Profile: &profile}
}

// setLocked installs next as the current state and notifies subscribers.
// Loading is false for every state except Unknown.
func (m *Manager) setLocked(next Snapshot) {
	next.Loading = next.State == Unknown
	next.Version = m.snap.Version + 1
	m.snap = next

	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next.clone()
	}
}
