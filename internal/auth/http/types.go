package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
)

// Service is the account/session API the handlers depend on.
type Service interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Session, error)
	SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*domain.Session, error)
	PrincipalSession(ctx context.Context, userID string) (*domain.Session, error)
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error)
}

// Handler bundles the dependencies for auth HTTP endpoints.
type Handler struct {
	authService Service
	logger      *zap.Logger
}

func New(authService Service, logger *zap.Logger) *Handler {
	return &Handler{
		authService: authService,
		logger:      logging.OrNop(logger),
	}
}
