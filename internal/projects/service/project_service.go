package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/logging"
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// Repository is the storage the project service needs.
type Repository interface {
	Insert(ctx context.Context, ownerID string, d domain.Draft) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, ownerID, id string, patch domain.Patch) (*domain.Project, error)
	SoftDelete(ctx context.Context, ownerID, id string) (bool, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		logger: logging.OrNop(logger).Named("projects"),
		now:    time.Now,
	}
}

// Create validates and stores a new project
func (s *ProjectService) Create(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	draft = draft.Normalize(s.now())
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Insert(ctx, ownerID, draft)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("project created", zap.String("project_id", p.ID), zap.String("owner", ownerID))
	return p, nil
}

// List returns all projects for a user, newest first
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update applies a partial update and returns the full record
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, patch domain.Patch) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, ownerID, id, patch.Normalize())
}

// Delete soft-deletes a project
func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	ok, err := s.repo.SoftDelete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
