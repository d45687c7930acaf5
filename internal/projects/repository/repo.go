package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

const projectColumns = `id::text, user_id::text, title, prompt, source_image_refs, generated_image_ref, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Insert stores a new project for the given owner. The id and created_at are assigned here.
func (r *ProjectRepository) Insert(ctx context.Context, ownerID string, d domain.Draft) (*domain.Project, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id required")
	}
	refs := d.SourceImageRefs
	if refs == nil {
		refs = []string{}
	}

	q := `
insert into projects (id, user_id, title, prompt, source_image_refs, generated_image_ref)
values ($1::uuid, $2::uuid, $3, $4, $5, $6)
returning ` + projectColumns + `;`
	return scanProject(r.db.QueryRow(ctx, q, uuid.NewString(), ownerID, d.Title, d.Prompt, refs, d.GeneratedImageRef))
}

// ListByOwner returns all non-deleted projects for the given owner, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where user_id = $1::uuid and deleted_at is null
order by created_at desc, id;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update applies the non-nil patch fields and returns the canonical record.
func (r *ProjectRepository) Update(ctx context.Context, ownerID, id string, patch domain.Patch) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	q := `
update projects
set title = coalesce($3, title),
    prompt = coalesce($4, prompt),
    generated_image_ref = coalesce($5, generated_image_ref),
    updated_at = now()
where user_id = $1::uuid and id = $2::uuid and deleted_at is null
returning ` + projectColumns + `;`
	return scanProject(r.db.QueryRow(ctx, q, ownerID, id, patch.Title, patch.Prompt, patch.GeneratedImageRef))
}

// SoftDelete marks a project as deleted (soft delete).
func (r *ProjectRepository) SoftDelete(ctx context.Context, ownerID, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	const q = `
update projects
set deleted_at = now(), updated_at = now()
where user_id = $1::uuid and id = $2::uuid and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, ownerID, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// PurgeDeleted permanently removes projects soft-deleted before the cutoff.
func (r *ProjectRepository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	const q = `delete from projects where deleted_at is not null and deleted_at < $1;`
	ct, err := r.db.Exec(ctx, q, before)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Prompt, &p.SourceImageRefs, &p.GeneratedImageRef, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.SourceImageRefs == nil {
		p.SourceImageRefs = []string{}
	}
	return &p, nil
}
