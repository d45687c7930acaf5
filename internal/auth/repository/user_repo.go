package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

const userColumns = `id::text, email, coalesce(password_hash, ''), firebase_uid, display_name, confirmed_at, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account. The user's ID and timestamps are filled in.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Email == "" {
		return fmt.Errorf("email required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	const q = `
insert into users (id, email, password_hash, display_name, confirmed_at)
values ($1::uuid, $2, nullif($3, ''), $4, $5)
returning created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, user.ID, user.Email, user.PasswordHash, user.DisplayName, user.ConfirmedAt).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by their normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `select ` + userColumns + ` from users where email = $1;`
	return r.scanOne(r.db.QueryRow(ctx, q, email))
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	q := `select ` + userColumns + ` from users where id = $1::uuid;`
	return r.scanOne(r.db.QueryRow(ctx, q, id))
}

// UpdateProfile applies the provided profile fields and returns the updated row.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	var displayName *string
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		displayName = &name
	}

	q := `
update users
set display_name = coalesce($2, display_name), updated_at = now()
where id = $1::uuid
returning ` + userColumns + `;`
	return r.scanOne(r.db.QueryRow(ctx, q, id, displayName))
}

// EnsureExternal upserts the account behind an externally verified identity
// (Firebase UID) and returns it. Such accounts are confirmed by the provider.
func (r *UserRepository) EnsureExternal(ctx context.Context, externalUID, email, displayName string) (*domain.User, error) {
	if externalUID == "" {
		return nil, fmt.Errorf("external uid required")
	}
	if email == "" {
		email = externalUID + "@firebase.local"
	}

	q := `
insert into users (id, email, firebase_uid, display_name, confirmed_at, updated_at)
values ($1::uuid, $2, $3, $4, now(), now())
on conflict (firebase_uid) do update
set
  email = coalesce(nullif(excluded.email, ''), users.email),
  display_name = coalesce(nullif(excluded.display_name, ''), users.display_name),
  updated_at = now()
returning ` + userColumns + `;`
	return r.scanOne(r.db.QueryRow(ctx, q, uuid.NewString(), strings.ToLower(email), externalUID, displayName))
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ExternalUID, &u.DisplayName, &u.ConfirmedAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
