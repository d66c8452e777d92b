// Copyright (c) 2026 Clipflow. All rights reserved.

package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipflow/clipflow/internal/platform/apperr"
)

// PostgresSessionRepository implements the SessionRepository interface using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new session record into the core.chunked_upload table.

Parameters:
  - context: context.Context
  - session: *Session (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO core.chunked_upload (
			id, project_id, filename, mime, total_size, received_size, temp_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.ProjectID,
		session.Filename,
		session.Mime,
		session.TotalSize,
		session.ReceivedSize,
		session.TempKey,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_upload_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByHandle retrieves the session bound to (handle, projectID).

Parameters:
  - context: context.Context
  - handle: string
  - projectID: int64

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresSessionRepository) FindByHandle(context context.Context, handle string, projectID int64) (*Session, error) {
	const query = `
		SELECT id, project_id, filename, mime, total_size, received_size, temp_key, created_at, updated_at
		FROM core.chunked_upload
		WHERE id = $1 AND project_id = $2`

	found := &Session{}
	err := repository.pool.QueryRow(context, query, handle, projectID).Scan(
		&found.ID,
		&found.ProjectID,
		&found.Filename,
		&found.Mime,
		&found.TotalSize,
		&found.ReceivedSize,
		&found.TempKey,
		&found.CreatedAt,
		&found.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Upload session")
		}
		return nil, fmt.Errorf("postgres_upload_repo_find_failed: %w", err)
	}

	return found, nil
}

/*
UpdateReceived persists a new received_size and bumps updated_at.

Parameters:
  - context: context.Context
  - handle: string
  - receivedSize: int64

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresSessionRepository) UpdateReceived(context context.Context, handle string, receivedSize int64) error {
	const query = `
		UPDATE core.chunked_upload
		SET received_size = $2, updated_at = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, handle, receivedSize, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_upload_repo_update_received_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Upload session")
	}

	return nil
}

/*
Delete removes the session record.

Parameters:
  - context: context.Context
  - handle: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresSessionRepository) Delete(context context.Context, handle string) error {
	const query = `DELETE FROM core.chunked_upload WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, handle)
	if err != nil {
		return fmt.Errorf("postgres_upload_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Upload session")
	}

	return nil
}

/*
ListIdleSince retrieves sessions whose updated_at predates the cutoff.

Parameters:
  - context: context.Context
  - cutoff: time.Time

Returns:
  - []*Session: Abandoned sessions, oldest first
  - error: Database errors
*/
func (repository *PostgresSessionRepository) ListIdleSince(context context.Context, cutoff time.Time) ([]*Session, error) {
	const query = `
		SELECT id, project_id, filename, mime, total_size, received_size, temp_key, created_at, updated_at
		FROM core.chunked_upload
		WHERE updated_at < $1
		ORDER BY updated_at ASC`

	rows, err := repository.pool.Query(context, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("postgres_upload_repo_list_idle_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]*Session, 0)
	for rows.Next() {
		item := &Session{}
		if err := rows.Scan(
			&item.ID,
			&item.ProjectID,
			&item.Filename,
			&item.Mime,
			&item.TotalSize,
			&item.ReceivedSize,
			&item.TempKey,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_upload_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_upload_repo_rows_failed: %w", err)
	}

	return sessions, nil
}
