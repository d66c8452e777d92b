// Copyright (c) 2026 Clipflow. All rights reserved.

package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new member record into the users.member table.

Description: The database assigns the numeric ID; the entity is updated
in place with the generated id and timestamps.

Parameters:
  - context: context.Context
  - member: *Member (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, member *Member) error {
	const query = `
		INSERT INTO users.member (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	err := repository.pool.QueryRow(context, query,
		member.Email,
		member.Name,
		member.PasswordHash,
		member.CreatedAt,
		member.UpdatedAt,
	).Scan(&member.ID)

	if err != nil {
		return dberr.Wrap(err, "Member")
	}

	return nil
}

/*
FindByEmail retrieves a member record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Member: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Member, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users.member
		WHERE email = $1`

	found := &Member{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&found.ID,
		&found.Email,
		&found.Name,
		&found.PasswordHash,
		&found.CreatedAt,
		&found.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Member not found with this email")
		}
		return nil, fmt.Errorf("postgres_member_repo_find_by_email_failed: %w", err)
	}

	return found, nil
}

/*
FindByID retrieves a member record by their numeric primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Member: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Member, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users.member
		WHERE id = $1`

	found := &Member{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&found.ID,
		&found.Email,
		&found.Name,
		&found.PasswordHash,
		&found.CreatedAt,
		&found.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Member not found")
		}
		return nil, fmt.Errorf("postgres_member_repo_find_by_id_failed: %w", err)
	}

	return found, nil
}
