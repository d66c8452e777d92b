// Copyright (c) 2026 Clipflow. All rights reserved.

package project

import (
	"context"

	"github.com/clipflow/clipflow/pkg/pagination"
)

// # Project Data Access

// Repository defines the data access contract for projects.
type Repository interface {

	/*
		Create persists a new project and assigns its ID.

		Parameters:
		  - context: context.Context
		  - project: *Project

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, project *Project) error

	/*
		FindByID returns the project with the given ID regardless of owner.
		Ownership checks belong to the policy layer.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Project: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Project, error)

	/*
		ListByOwner returns a page of projects pre-filtered by owner id,
		newest first, with the owner's total count.

		Parameters:
		  - context: context.Context
		  - ownerID: int64
		  - page: pagination.Params

		Returns:
		  - []*Project: Page of entities
		  - int64: Total matching rows
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, ownerID int64, page pagination.Params) ([]*Project, int64, error)

	/*
		Update persists changes to mutable project fields.

		Parameters:
		  - context: context.Context
		  - project: *Project

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, project *Project) error

	/*
		Delete removes the project row. Dependent rows (assets, history,
		upload sessions) cascade at the schema level.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id int64) error
}

// # History Data Access

// HistoryRepository defines the data access contract for the edit log.
type HistoryRepository interface {

	/*
		Append persists a new history entry and assigns its ID.

		Parameters:
		  - context: context.Context
		  - entry: *HistoryEntry

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, entry *HistoryEntry) error

	/*
		ListByProject returns a page of history entries for one project,
		newest first.

		Parameters:
		  - context: context.Context
		  - projectID: int64
		  - page: pagination.Params

		Returns:
		  - []*HistoryEntry: Page of entries
		  - int64: Total matching rows
		  - error: Database retrieval failures
	*/
	ListByProject(context context.Context, projectID int64, page pagination.Params) ([]*HistoryEntry, int64, error)
}
