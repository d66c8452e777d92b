// Copyright (c) 2026 Clipflow. All rights reserved.

package member

import (
	"context"

	"github.com/clipflow/clipflow/internal/platform/sec"
)

// # Member Data Access

// Repository defines the data access contract for member accounts.
type Repository interface {

	/*
		FindByID returns the member with the given numeric ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Member: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Member, error)

	/*
		FindByEmail returns the member with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Member: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Member, error)

	/*
		Create persists a brand-new member account and assigns its ID.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: apperr.Conflict on duplicate email or persistence failures
	*/
	Create(context context.Context, member *Member) error
}

// # Identity Cache

// IdentityCache defines the volatile cache contract used by the auth gate.
//
// A cache miss is signalled by (nil, nil); only connectivity problems
// surface as errors so the caller can fall back to the primary store.
type IdentityCache interface {
	Get(context context.Context, memberID int64) (*sec.Identity, error)
	Set(context context.Context, identity *sec.Identity) error
	Invalidate(context context.Context, memberID int64) error
}
