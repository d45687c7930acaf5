package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/ids"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	Create(ctx context.Context, s *domain.StoredSession) error
	Get(ctx context.Context, token string) (*domain.StoredSession, error)
	Delete(ctx context.Context, token string) error
}

type Options struct {
	SessionTTL          time.Duration
	MinPasswordLength   int
	RequireConfirmation bool
	Logger              *zap.Logger
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, opts Options) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.MinPasswordLength < domain.MinPasswordLength {
		opts.MinPasswordLength = domain.MinPasswordLength
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		opts:     opts,
		logger:   logging.OrNop(opts.Logger).Named("auth"),
		now:      time.Now,
	}
}

// SignUp creates an account and opens a session for it.
// When confirmation is required the session reports Confirmed=false.
func (s *AuthService) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Session, error) {
	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckPassword(req.Password, s.opts.MinPasswordLength); err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if len(displayName) > domain.MaxDisplayNameLength {
		return nil, fmt.Errorf("%w: display name longer than %d characters", domain.ErrValidation, domain.MaxDisplayNameLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if !s.opts.RequireConfirmation {
		now := s.now()
		user.ConfirmedAt = &now
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.String("user_id", user.ID), zap.Bool("confirmed", user.ConfirmedAt != nil))
	return s.openSession(ctx, user)
}

// SignIn checks credentials and opens a session.
func (s *AuthService) SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	email, err := domain.NormalizeEmail(creds.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		// externally managed account
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// SignOut ends the session behind token. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Session resolves a token into the current session view.
func (s *AuthService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	stored, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(stored.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}

	sess, err := s.PrincipalSession(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt = stored.ExpiresAt
	return sess, nil
}

// PrincipalSession describes the account behind a principal that was
// authenticated without a stored session, such as a Firebase ID token.
// The returned session has no token and no expiry.
func (s *AuthService) PrincipalSession(ctx context.Context, userID string) (*domain.Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		Principal: user.Principal(),
		Profile:   user.Profile(),
		Confirmed: user.ConfirmedAt != nil,
	}, nil
}

// Verify implements the token verifier used by the auth middleware.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	sess, err := s.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	return &sess.Principal, nil
}

// UpdateProfile updates the user's profile
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	return &profile, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	token, err := ids.NewToken("ses")
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	stored := &domain.StoredSession{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &domain.Session{
		Token:     token,
		Principal: user.Principal(),
		Profile:   user.Profile(),
		Confirmed: user.ConfirmedAt != nil,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}
