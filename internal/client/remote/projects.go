package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// ProjectsAPI is the project store's remote over HTTP.
type ProjectsAPI struct {
	c *Client
}

func NewProjectsAPI(c *Client) *ProjectsAPI {
	return &ProjectsAPI{c: c}
}

type projectResponse struct {
	Project domain.Project `json:"project"`
}

type projectsResponse struct {
	Projects []domain.Project `json:"projects"`
}

func (a *ProjectsAPI) Select(ctx context.Context, ownerID string) ([]domain.Project, error) {
	var out projectsResponse
	path := "/api/v1/projects?owner=" + url.QueryEscape(ownerID)
	if err := a.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, projectError(err)
	}
	if out.Projects == nil {
		out.Projects = []domain.Project{}
	}
	return out.Projects, nil
}

// Insert creates a project. The server takes the owner from the session.
func (a *ProjectsAPI) Insert(ctx context.Context, _ string, draft domain.Draft) (*domain.Project, error) {
	var out projectResponse
	if err := a.c.do(ctx, http.MethodPost, "/api/v1/projects", draft, &out); err != nil {
		return nil, projectError(err)
	}
	return &out.Project, nil
}

func (a *ProjectsAPI) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	var out projectResponse
	if err := a.c.do(ctx, http.MethodPatch, "/api/v1/projects/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, projectError(err)
	}
	return &out.Project, nil
}

func (a *ProjectsAPI) Delete(ctx context.Context, id string) error {
	if err := a.c.do(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(id), nil, nil); err != nil {
		return projectError(err)
	}
	return nil
}

// projectError tags API statuses with the project domain errors. Transport
// failures and other statuses are returned as they are.
func projectError(err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", domain.ErrValidation, se)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, se)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, se)
	default:
		return err
	}
}
