// Copyright (c) 2026 Clipflow. All rights reserved.

package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipflow/clipflow/internal/platform/dberr"
	"github.com/clipflow/clipflow/pkg/pagination"
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
Create persists a new asset record into the core.asset table.

Parameters:
  - context: context.Context
  - asset: *Asset (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, asset *Asset) error {
	const query = `
		INSERT INTO core.asset (project_id, original_name, size, mime, file, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	asset.CreatedAt = time.Now()

	err := repository.pool.QueryRow(context, query,
		asset.ProjectID,
		asset.OriginalName,
		asset.Size,
		asset.Mime,
		asset.File,
		asset.CreatedAt,
	).Scan(&asset.ID)

	if err != nil {
		return dberr.Wrap(err, "Asset")
	}

	return nil
}

/*
ListByProject retrieves a page of a project's assets, newest first.

Parameters:
  - context: context.Context
  - projectID: int64
  - page: pagination.Params

Returns:
  - []*Asset: Page of entities
  - int64: Total matching rows
  - error: Database errors
*/
func (repository *PostgresRepository) ListByProject(context context.Context, projectID int64, page pagination.Params) ([]*Asset, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM core.asset WHERE project_id = $1`

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, projectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_asset_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, project_id, original_name, size, mime, file, created_at
		FROM core.asset
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, listQuery, projectID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_asset_repo_list_failed: %w", err)
	}
	defer rows.Close()

	assets := make([]*Asset, 0, page.Limit)
	for rows.Next() {
		item := &Asset{}
		if err := rows.Scan(
			&item.ID,
			&item.ProjectID,
			&item.OriginalName,
			&item.Size,
			&item.Mime,
			&item.File,
			&item.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_asset_repo_scan_failed: %w", err)
		}
		assets = append(assets, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_asset_repo_rows_failed: %w", err)
	}

	return assets, total, nil
}
