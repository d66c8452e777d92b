// Copyright (c) 2026 Clipflow. All rights reserved.

package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/clipflow/clipflow/internal/asset"
	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/constants"
	"github.com/clipflow/clipflow/internal/platform/ctxutil"
	"github.com/clipflow/clipflow/internal/platform/sec"
	"github.com/clipflow/clipflow/pkg/uuidv7"
)

// # Contracts & Types

// FileStore is the staging and promotion surface the coordinator needs
// from the storage layer. storage.LocalStore satisfies it.
type FileStore interface {
	CreateTemp(key string) error
	AppendTemp(key string, reader io.Reader) (int64, error)
	TempSize(key string) (int64, error)
	Promote(tempKey, mediaKey string) error
	RemoveTemp(key string) error
}

// Coordinator orchestrates the chunked upload lifecycle: session
// creation, serialized chunk appends, and promotion into an asset.
type Coordinator struct {
	sessions SessionRepository
	assets   asset.Repository
	projects asset.ProjectAuthorizer
	files    FileStore
	locks    *sessionLocks
}

// NewCoordinator constructs a new [Coordinator] with necessary dependencies.
func NewCoordinator(sessions SessionRepository, assets asset.Repository, projects asset.ProjectAuthorizer, files FileStore) *Coordinator {
	return &Coordinator{
		sessions: sessions,
		assets:   assets,
		projects: projects,
		files:    files,
		locks:    newSessionLocks(),
	}
}

// tempKeyFor derives the unique staging key owned by one session.
func tempKeyFor(handle string) string {
	return handle + ".part"
}

// # Initiation

// InitInput declares the file a client intends to upload.
type InitInput struct {
	Filename string
	Size     int64
	Mime     string
}

// InitResult is the handle plus the advisory chunk-size hint. The server
// accepts chunks of any size; the hint only guides well-behaved clients.
type InitResult struct {
	UploadID  string `json:"upload_id"`
	ChunkSize int64  `json:"chunk_size"`
}

/*
Init validates the declaration and opens a new upload session.

Description: Allocates a time-ordered UUID handle, creates the empty
staging file, and persists the session with received_size 0. If the
record cannot be persisted the staging file is removed again so no
orphan is left behind.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - input: InitInput

Returns:
  - *InitResult: Handle and chunk-size hint
  - error: Validation (400/413), authorization (404), or storage failures
*/
func (coordinator *Coordinator) Init(context context.Context, identity *sec.Identity, projectID int64, input InitInput) (*InitResult, error) {
	if _, err := coordinator.projects.Authorize(context, identity, projectID); err != nil {
		return nil, err
	}

	if err := asset.ValidateVideo(input.Filename, input.Mime, input.Size); err != nil {
		return nil, err
	}

	handle := uuidv7.New()
	tempKey := tempKeyFor(handle)

	if err := coordinator.files.CreateTemp(tempKey); err != nil {
		return nil, apperr.Internal(fmt.Errorf("upload_init_create_temp_failed: %w", err))
	}

	session := &Session{
		ID:           handle,
		ProjectID:    projectID,
		Filename:     input.Filename,
		Mime:         input.Mime,
		TotalSize:    input.Size,
		ReceivedSize: 0,
		TempKey:      tempKey,
	}

	if err := coordinator.sessions.Create(context, session); err != nil {
		_ = coordinator.files.RemoveTemp(tempKey)
		return nil, apperr.Internal(fmt.Errorf("upload_init_persist_failed: %w", err))
	}

	return &InitResult{UploadID: handle, ChunkSize: constants.UploadChunkBytes}, nil
}

// # Chunk Append

// AppendResult reports progress after one accepted chunk.
type AppendResult struct {
	ReceivedSize int64 `json:"received_size"`
	Done         bool  `json:"done"`
}

/*
AppendChunk appends one chunk to the session's staging file.

Description: Serialized per session by a keyed lock; the session row is
re-read under the lock so the overflow check always sees the latest
counter. The overflow check runs before any byte is written, so a
rejected chunk leaves both the file and the counter untouched. The file
append happens before the counter is persisted (write-then-persist): a
crash in between leaves the counter behind the file, which the
completion cross-check catches.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - handle: string
  - chunk: []byte

Returns:
  - *AppendResult: New received size and done flag
  - error: 404 unknown (handle, project) binding; 400 empty or
    overflowing chunk; storage failures leave persisted state unchanged
*/
func (coordinator *Coordinator) AppendChunk(context context.Context, identity *sec.Identity, projectID int64, handle string, chunk []byte) (*AppendResult, error) {
	if _, err := coordinator.projects.Authorize(context, identity, projectID); err != nil {
		return nil, err
	}

	release := coordinator.locks.Acquire(handle)
	defer release()

	session, err := coordinator.sessions.FindByHandle(context, handle, projectID)
	if err != nil {
		return nil, err
	}

	if len(chunk) == 0 {
		return nil, apperr.ValidationError("Chunk payload must not be empty")
	}

	// Overflow check before any write.
	newReceived := session.ReceivedSize + int64(len(chunk))
	if newReceived > session.TotalSize {
		return nil, apperr.ValidationError(fmt.Sprintf(
			"Chunk overflows the declared size: %d received + %d chunk > %d total",
			session.ReceivedSize, len(chunk), session.TotalSize,
		))
	}

	written, err := coordinator.files.AppendTemp(session.TempKey, bytes.NewReader(chunk))
	if err != nil {
		// Counter untouched: the client re-sends the chunk.
		return nil, apperr.Internal(fmt.Errorf("upload_append_write_failed after %d bytes: %w", written, err))
	}

	if err := coordinator.sessions.UpdateReceived(context, handle, newReceived); err != nil {
		return nil, apperr.Internal(fmt.Errorf("upload_append_persist_failed: %w", err))
	}

	return &AppendResult{
		ReceivedSize: newReceived,
		Done:         newReceived == session.TotalSize,
	}, nil
}

// # Completion

/*
Complete promotes a fully-received session into a permanent asset.

Description: Re-validates the declaration against current limits, then
cross-checks the staging file's actual byte length against the declared
total; any mismatch means the counter and the filesystem diverged and
surfaces as a generic server error rather than a short asset. The asset
record is durably created before the session record is deleted, so a
crash in between leaves at worst an orphaned session, never a lost
asset. Staging cleanup failures are logged and swallowed.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - handle: string

Returns:
  - *asset.Asset: The created permanent asset
  - error: 404 unknown binding or already completed; 400 incomplete or
    re-validation failure; 413 stale size violation; integrity failures
*/
func (coordinator *Coordinator) Complete(context context.Context, identity *sec.Identity, projectID int64, handle string) (*asset.Asset, error) {
	if _, err := coordinator.projects.Authorize(context, identity, projectID); err != nil {
		return nil, err
	}

	// Same lock as appends: a chunk in flight cannot race the promotion.
	release := coordinator.locks.Acquire(handle)
	defer release()

	session, err := coordinator.sessions.FindByHandle(context, handle, projectID)
	if err != nil {
		return nil, err
	}

	if !session.Done() {
		return nil, apperr.ValidationError(fmt.Sprintf(
			"Upload is incomplete: %d of %d bytes received",
			session.ReceivedSize, session.TotalSize,
		))
	}

	// Defense against limit changes between init and complete.
	if err := asset.ValidateVideo(session.Filename, session.Mime, session.TotalSize); err != nil {
		return nil, err
	}

	// The filesystem length must equal the declared total.
	actualSize, err := coordinator.files.TempSize(session.TempKey)
	if err != nil {
		return nil, apperr.Integrity(fmt.Errorf("upload_complete_stat_failed: %w", err))
	}
	if actualSize != session.TotalSize {
		return nil, apperr.Integrity(fmt.Errorf(
			"upload_complete_length_mismatch: staged %d bytes, declared %d", actualSize, session.TotalSize,
		))
	}

	mediaKey := asset.NewMediaKey()
	if err := coordinator.files.Promote(session.TempKey, mediaKey); err != nil {
		return nil, apperr.Integrity(fmt.Errorf("upload_complete_promote_failed: %w", err))
	}

	created := &asset.Asset{
		ProjectID:    projectID,
		OriginalName: session.Filename,
		Size:         session.TotalSize,
		Mime:         session.Mime,
		File:         mediaKey,
	}

	if err := coordinator.assets.Create(context, created); err != nil {
		return nil, apperr.Internal(fmt.Errorf("upload_complete_asset_persist_failed: %w", err))
	}

	logger := ctxutil.GetLogger(context)

	if err := coordinator.sessions.Delete(context, handle); err != nil {
		// The asset exists; an orphaned session is reclaimed by the sweeper.
		logger.Warn("upload_session_delete_failed", "upload_id", handle, "error", err)
	}

	if err := coordinator.files.RemoveTemp(session.TempKey); err != nil {
		logger.Warn("upload_temp_cleanup_failed", "upload_id", handle, "error", err)
	}

	return created, nil
}
