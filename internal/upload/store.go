// Copyright (c) 2026 Clipflow. All rights reserved.

package upload

import (
	"context"
	"time"
)

// # Session Data Access

// SessionRepository defines the data access contract for upload sessions.
type SessionRepository interface {

	/*
		Create persists a brand-new session record.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByHandle returns the session matching (handle, projectID).
		Binding both keys on every lookup prevents cross-project chunk
		injection even if a handle leaks.

		Parameters:
		  - context: context.Context
		  - handle: string
		  - projectID: int64

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByHandle(context context.Context, handle string, projectID int64) (*Session, error)

	/*
		UpdateReceived persists a new received_size for the session.

		Parameters:
		  - context: context.Context
		  - handle: string
		  - receivedSize: int64

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdateReceived(context context.Context, handle string, receivedSize int64) error

	/*
		Delete removes the session record.

		Parameters:
		  - context: context.Context
		  - handle: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, handle string) error

	/*
		ListIdleSince returns every session whose last progress predates
		the cutoff. The sweeper deletes these together with their temp
		files.

		Parameters:
		  - context: context.Context
		  - cutoff: time.Time

		Returns:
		  - []*Session: Abandoned sessions
		  - error: Database retrieval failures
	*/
	ListIdleSince(context context.Context, cutoff time.Time) ([]*Session, error)
}
