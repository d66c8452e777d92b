// Copyright (c) 2026 Clipflow. All rights reserved.

package asset

import (
	"context"

	"github.com/clipflow/clipflow/pkg/pagination"
)

// # Asset Data Access

// Repository defines the data access contract for assets.
//
// The chunked upload coordinator uses Create directly when a session
// completes; everything else flows through the asset service.
type Repository interface {

	/*
		Create persists a new asset record and assigns its ID.

		Parameters:
		  - context: context.Context
		  - asset: *Asset

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, asset *Asset) error

	/*
		ListByProject returns a page of a project's assets, newest first.

		Parameters:
		  - context: context.Context
		  - projectID: int64
		  - page: pagination.Params

		Returns:
		  - []*Asset: Page of entities
		  - int64: Total matching rows
		  - error: Database retrieval failures
	*/
	ListByProject(context context.Context, projectID int64, page pagination.Params) ([]*Asset, int64, error)
}
