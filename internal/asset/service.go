// Copyright (c) 2026 Clipflow. All rights reserved.

package asset

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/constants"
	"github.com/clipflow/clipflow/internal/platform/sec"
	"github.com/clipflow/clipflow/internal/platform/storage"
	"github.com/clipflow/clipflow/internal/project"
	"github.com/clipflow/clipflow/pkg/pagination"
	"github.com/clipflow/clipflow/pkg/uuidv7"
)

// # Contracts & Types

// ProjectAuthorizer binds asset operations to project ownership. The
// project service satisfies this interface.
type ProjectAuthorizer interface {
	// Authorize returns an error when projectID does not exist or is not
	// owned by the caller. Missing and foreign projects are
	// indistinguishable to the caller.
	Authorize(context context.Context, identity *sec.Identity, projectID int64) (*project.Project, error)
}

// FileStore persists asset bytes under the media root.
type FileStore interface {
	// SaveStream writes up to limitBytes from reader under mediaKey,
	// returning the byte count. Oversized streams error without leaving
	// a partial file.
	SaveStream(mediaKey string, reader io.Reader, limitBytes int64) (int64, error)
}

// Service implements asset use cases.
type Service struct {
	repository Repository
	projects   ProjectAuthorizer
	files      FileStore
}

// NewService constructs a new asset [Service] with necessary dependencies.
func NewService(repository Repository, projects ProjectAuthorizer, files FileStore) *Service {
	return &Service{
		repository: repository,
		projects:   projects,
		files:      files,
	}
}

// # Validation

/*
ValidateVideo enforces the upload constraints shared by the single-shot
and chunked paths.

Description: filename must be non-empty with a .mp4 extension
(case-insensitive), mime must equal video/mp4 exactly, and size must be
positive and at most the global ceiling.

Parameters:
  - filename: string (client-declared original name)
  - mime: string (client-declared content type)
  - size: int64 (declared byte size)

Returns:
  - error: apperr.ValidationError or apperr.PayloadTooLarge; nil when acceptable
*/
func ValidateVideo(filename, mime string, size int64) error {
	if filename == "" {
		return apperr.ValidationError("Filename is required")
	}
	if !strings.HasSuffix(strings.ToLower(filename), constants.AcceptedVideoExtension) {
		return apperr.ValidationError("Only " + constants.AcceptedVideoExtension + " files are accepted")
	}
	if mime != constants.AcceptedVideoMime {
		return apperr.ValidationError("Only " + constants.AcceptedVideoMime + " content is accepted")
	}
	if size <= 0 {
		return apperr.ValidationError("Size must be a positive number of bytes")
	}
	if size > constants.MaxUploadBytes {
		return apperr.PayloadTooLarge(constants.MaxUploadBytes)
	}

	return nil
}

// NewMediaKey allocates a collision-resistant permanent storage key.
func NewMediaKey() string {
	return uuidv7.New() + constants.AcceptedVideoExtension
}

// # Use Cases

// UploadInput holds a single-shot upload arriving as one multipart stream.
type UploadInput struct {
	Filename string
	Mime     string
	Size     int64
	Body     io.Reader
}

/*
Upload stores one complete video in a single request.

Description: After validation the stream is written under a fresh media
key with the global byte ceiling enforced during the copy, then the asset
record is persisted. The recorded size is the actual byte count written.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - input: UploadInput

Returns:
  - *Asset: Persisted entity
  - error: Validation, authorization, storage, or persistence failures
*/
func (service *Service) Upload(context context.Context, identity *sec.Identity, projectID int64, input UploadInput) (*Asset, error) {
	if _, err := service.projects.Authorize(context, identity, projectID); err != nil {
		return nil, err
	}

	if err := ValidateVideo(input.Filename, input.Mime, input.Size); err != nil {
		return nil, err
	}

	mediaKey := NewMediaKey()

	written, err := service.files.SaveStream(mediaKey, input.Body, constants.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperr.PayloadTooLarge(constants.MaxUploadBytes)
		}
		return nil, apperr.Internal(err)
	}

	created := &Asset{
		ProjectID:    projectID,
		OriginalName: input.Filename,
		Size:         written,
		Mime:         input.Mime,
		File:         mediaKey,
	}

	if err := service.repository.Create(context, created); err != nil {
		return nil, err
	}

	return created, nil
}

/*
List returns a page of an owned project's assets, newest first.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - page: pagination.Params

Returns:
  - []*Asset: Page of entities
  - int64: Total assets for the project
  - error: apperr.NotFound or database retrieval failures
*/
func (service *Service) List(context context.Context, identity *sec.Identity, projectID int64, page pagination.Params) ([]*Asset, int64, error) {
	if _, err := service.projects.Authorize(context, identity, projectID); err != nil {
		return nil, 0, err
	}

	return service.repository.ListByProject(context, projectID, page)
}
