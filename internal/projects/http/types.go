package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/logging"
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// Service is the project API the handlers depend on.
type Service interface {
	Create(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, ownerID, id string, patch domain.Patch) (*domain.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects Service
	logger   *zap.Logger
}

func New(projects Service, logger *zap.Logger) *Handler {
	return &Handler{projects: projects, logger: logging.OrNop(logger)}
}
