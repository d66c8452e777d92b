// Copyright (c) 2026 Clipflow. All rights reserved.

package project

import (
	"context"
	"fmt"

	"github.com/clipflow/clipflow/internal/platform/sec"
	"github.com/clipflow/clipflow/pkg/pagination"
	"github.com/clipflow/clipflow/pkg/slug"
)

// Service implements project and history use cases.
//
// Every project-bound operation funnels through [Service.authorize] so the
// ownership rule lives in exactly one place.
type Service struct {
	repository        Repository
	historyRepository HistoryRepository
	policy            *Policy
}

// NewService constructs a new project [Service] with necessary dependencies.
func NewService(repository Repository, historyRepository HistoryRepository) *Service {
	return &Service{
		repository:        repository,
		historyRepository: historyRepository,
		policy:            OwnerPolicy(),
	}
}

// authorize loads the project and checks the caller against its owner.
func (service *Service) authorize(context context.Context, identity *sec.Identity, projectID int64) (*Project, error) {
	found, err := service.repository.FindByID(context, projectID)
	if err != nil {
		return nil, err
	}

	if err := service.policy.Authorize(identity, found.OwnerID); err != nil {
		return nil, err
	}

	return found, nil
}

// Authorize exposes the ownership check to sibling domains (assets,
// uploads) that bind resources to a project.
func (service *Service) Authorize(context context.Context, identity *sec.Identity, projectID int64) (*Project, error) {
	return service.authorize(context, identity, projectID)
}

// # Project CRUD

// CreateInput holds the data required to open a new project.
type CreateInput struct {
	Title       string
	Description string
}

/*
Create persists a new project owned by the caller.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - input: CreateInput

Returns:
  - *Project: Created entity with derived slug
  - error: Persistence failures
*/
func (service *Service) Create(context context.Context, identity *sec.Identity, input CreateInput) (*Project, error) {
	created := &Project{
		OwnerID:     identity.MemberID,
		Title:       input.Title,
		Slug:        slug.From(input.Title),
		Description: input.Description,
	}

	if err := service.repository.Create(context, created); err != nil {
		return nil, fmt.Errorf("project_service_create_failed: %w", err)
	}

	return created, nil
}

/*
List returns a page of the caller's projects, newest first.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - page: pagination.Params

Returns:
  - []*Project: Page of entities
  - int64: Total owned projects
  - error: Database retrieval failures
*/
func (service *Service) List(context context.Context, identity *sec.Identity, page pagination.Params) ([]*Project, int64, error) {
	return service.repository.ListByOwner(context, identity.MemberID, page)
}

/*
Get returns one project after the ownership check.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64

Returns:
  - *Project: Hydrated entity
  - error: apperr.NotFound for missing or foreign projects
*/
func (service *Service) Get(context context.Context, identity *sec.Identity, projectID int64) (*Project, error) {
	return service.authorize(context, identity, projectID)
}

// UpdateInput holds the mutable project fields.
type UpdateInput struct {
	Title       string
	Description string
}

/*
Update replaces the mutable fields of an owned project. The slug is
re-derived when the title changes.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - input: UpdateInput

Returns:
  - *Project: Updated entity
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) Update(context context.Context, identity *sec.Identity, projectID int64, input UpdateInput) (*Project, error) {
	found, err := service.authorize(context, identity, projectID)
	if err != nil {
		return nil, err
	}

	if input.Title != found.Title {
		found.Slug = slug.From(input.Title)
	}
	found.Title = input.Title
	found.Description = input.Description

	if err := service.repository.Update(context, found); err != nil {
		return nil, fmt.Errorf("project_service_update_failed: %w", err)
	}

	return found, nil
}

/*
Delete removes an owned project. Assets, history entries, and pending
upload sessions cascade at the schema level.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) Delete(context context.Context, identity *sec.Identity, projectID int64) error {
	if _, err := service.authorize(context, identity, projectID); err != nil {
		return err
	}

	return service.repository.Delete(context, projectID)
}

// # Edit History

// HistoryInput holds the data for one recorded editing action.
type HistoryInput struct {
	Action string
	Params map[string]any
}

/*
RecordHistory appends an editing action to an owned project's log.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - input: HistoryInput

Returns:
  - *HistoryEntry: Persisted entry
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) RecordHistory(context context.Context, identity *sec.Identity, projectID int64, input HistoryInput) (*HistoryEntry, error) {
	if _, err := service.authorize(context, identity, projectID); err != nil {
		return nil, err
	}

	params := input.Params
	if params == nil {
		params = map[string]any{}
	}

	entry := &HistoryEntry{
		ProjectID: projectID,
		Action:    input.Action,
		Params:    params,
	}

	if err := service.historyRepository.Append(context, entry); err != nil {
		return nil, fmt.Errorf("project_service_history_append_failed: %w", err)
	}

	return entry, nil
}

/*
ListHistory returns a page of an owned project's edit log, newest first.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - projectID: int64
  - page: pagination.Params

Returns:
  - []*HistoryEntry: Page of entries
  - int64: Total entries for the project
  - error: apperr.NotFound or database retrieval failures
*/
func (service *Service) ListHistory(context context.Context, identity *sec.Identity, projectID int64, page pagination.Params) ([]*HistoryEntry, int64, error) {
	if _, err := service.authorize(context, identity, projectID); err != nil {
		return nil, 0, err
	}

	return service.historyRepository.ListByProject(context, projectID, page)
}
