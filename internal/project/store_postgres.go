// Copyright (c) 2026 Clipflow. All rights reserved.

package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/dberr"
	"github.com/clipflow/clipflow/pkg/pagination"
)

// # Project Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new project record into the core.project table.

Parameters:
  - context: context.Context
  - project: *Project (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, project *Project) error {
	const query = `
		INSERT INTO core.project (owner_id, title, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	err := repository.pool.QueryRow(context, query,
		project.OwnerID,
		project.Title,
		project.Slug,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID)

	if err != nil {
		return dberr.Wrap(err, "Project")
	}

	return nil
}

/*
FindByID retrieves a project by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Project: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Project, error) {
	const query = `
		SELECT id, owner_id, title, slug, description, created_at, updated_at
		FROM core.project
		WHERE id = $1`

	found := &Project{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&found.ID,
		&found.OwnerID,
		&found.Title,
		&found.Slug,
		&found.Description,
		&found.CreatedAt,
		&found.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Project")
		}
		return nil, fmt.Errorf("postgres_project_repo_find_by_id_failed: %w", err)
	}

	return found, nil
}

/*
ListByOwner retrieves a page of projects owned by one member, newest first.

Description: The owner filter is applied in SQL so foreign rows never load
into memory.

Parameters:
  - context: context.Context
  - ownerID: int64
  - page: pagination.Params

Returns:
  - []*Project: Page of entities
  - int64: Total owned projects
  - error: Database errors
*/
func (repository *PostgresRepository) ListByOwner(context context.Context, ownerID int64, page pagination.Params) ([]*Project, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM core.project WHERE owner_id = $1`

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_project_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, owner_id, title, slug, description, created_at, updated_at
		FROM core.project
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, listQuery, ownerID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_project_repo_list_failed: %w", err)
	}
	defer rows.Close()

	projects := make([]*Project, 0, page.Limit)
	for rows.Next() {
		item := &Project{}
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Title,
			&item.Slug,
			&item.Description,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_project_repo_scan_failed: %w", err)
		}
		projects = append(projects, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_project_repo_rows_failed: %w", err)
	}

	return projects, total, nil
}

/*
Update persists the mutable fields of a project.

Parameters:
  - context: context.Context
  - project: *Project

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) Update(context context.Context, project *Project) error {
	const query = `
		UPDATE core.project
		SET title = $2, slug = $3, description = $4, updated_at = $5
		WHERE id = $1`

	project.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		project.ID,
		project.Title,
		project.Slug,
		project.Description,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_project_repo_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Project")
	}

	return nil
}

/*
Delete removes a project row; dependents cascade via foreign keys.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	const query = `DELETE FROM core.project WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_project_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Project")
	}

	return nil
}

// # History Repository

// PostgresHistoryRepository implements the HistoryRepository interface using pgx.
type PostgresHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHistoryRepository creates a new PostgreSQL implementation of the HistoryRepository.
func NewPostgresHistoryRepository(pool *pgxpool.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{pool: pool}
}

/*
Append persists a new history entry. Params is stored as JSONB.

Parameters:
  - context: context.Context
  - entry: *HistoryEntry

Returns:
  - error: Database errors
*/
func (repository *PostgresHistoryRepository) Append(context context.Context, entry *HistoryEntry) error {
	const query = `
		INSERT INTO core.edit_history (project_id, action, params, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	entry.CreatedAt = time.Now()

	err := repository.pool.QueryRow(context, query,
		entry.ProjectID,
		entry.Action,
		entry.Params,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("postgres_history_repo_append_failed: %w", err)
	}

	return nil
}

/*
ListByProject retrieves a page of history entries, newest first.

Parameters:
  - context: context.Context
  - projectID: int64
  - page: pagination.Params

Returns:
  - []*HistoryEntry: Page of entries
  - int64: Total entries
  - error: Database errors
*/
func (repository *PostgresHistoryRepository) ListByProject(context context.Context, projectID int64, page pagination.Params) ([]*HistoryEntry, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM core.edit_history WHERE project_id = $1`

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, projectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_history_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, project_id, action, params, created_at
		FROM core.edit_history
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, listQuery, projectID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_history_repo_list_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]*HistoryEntry, 0, page.Limit)
	for rows.Next() {
		item := &HistoryEntry{}
		if err := rows.Scan(
			&item.ID,
			&item.ProjectID,
			&item.Action,
			&item.Params,
			&item.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_history_repo_scan_failed: %w", err)
		}
		entries = append(entries, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_history_repo_rows_failed: %w", err)
	}

	return entries, total, nil
}
