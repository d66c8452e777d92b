// Copyright (c) 2026 Clipflow. All rights reserved.

package project

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/sec"
	"github.com/clipflow/clipflow/pkg/pagination"
)

// # Test Doubles

type memoryProjectRepository struct {
	nextID int64
	byID   map[int64]*Project
}

func newMemoryProjectRepository() *memoryProjectRepository {
	return &memoryProjectRepository{nextID: 1, byID: make(map[int64]*Project)}
}

func (r *memoryProjectRepository) Create(_ context.Context, project *Project) error {
	project.ID = r.nextID
	r.nextID++
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	r.byID[project.ID] = project
	return nil
}

func (r *memoryProjectRepository) FindByID(_ context.Context, id int64) (*Project, error) {
	found, exists := r.byID[id]
	if !exists {
		return nil, apperr.NotFound("Project")
	}
	return found, nil
}

func (r *memoryProjectRepository) ListByOwner(_ context.Context, ownerID int64, page pagination.Params) ([]*Project, int64, error) {
	owned := make([]*Project, 0)
	for _, item := range r.byID {
		if item.OwnerID == ownerID {
			owned = append(owned, item)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })

	total := int64(len(owned))
	offset := page.Offset()
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (r *memoryProjectRepository) Update(_ context.Context, project *Project) error {
	if _, exists := r.byID[project.ID]; !exists {
		return apperr.NotFound("Project")
	}
	project.UpdatedAt = time.Now()
	r.byID[project.ID] = project
	return nil
}

func (r *memoryProjectRepository) Delete(_ context.Context, id int64) error {
	if _, exists := r.byID[id]; !exists {
		return apperr.NotFound("Project")
	}
	delete(r.byID, id)
	return nil
}

type memoryHistoryRepository struct {
	nextID  int64
	entries []*HistoryEntry
}

func newMemoryHistoryRepository() *memoryHistoryRepository {
	return &memoryHistoryRepository{nextID: 1}
}

func (r *memoryHistoryRepository) Append(_ context.Context, entry *HistoryEntry) error {
	entry.ID = r.nextID
	r.nextID++
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryHistoryRepository) ListByProject(_ context.Context, projectID int64, page pagination.Params) ([]*HistoryEntry, int64, error) {
	matching := make([]*HistoryEntry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ProjectID == projectID {
			matching = append(matching, r.entries[i])
		}
	}

	total := int64(len(matching))
	offset := page.Offset()
	if offset >= len(matching) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], total, nil
}

func newTestService() *Service {
	return NewService(newMemoryProjectRepository(), newMemoryHistoryRepository())
}

var (
	alice = &sec.Identity{MemberID: 1, Email: "alice@example.com"}
	bob   = &sec.Identity{MemberID: 2, Email: "bob@example.com"}
)

// # CRUD

func TestService_Create_DerivesSlug(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{
		Title: "Summer Festival Recap!",
	})
	require.NoError(t, err)

	assert.Equal(t, alice.MemberID, created.OwnerID)
	assert.Equal(t, "summer-festival-recap", created.Slug)
}

func TestService_Get_ForeignProjectHidden(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), bob, created.ID)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestService_List_ScopedToOwner(t *testing.T) {
	service := newTestService()

	_, err := service.Create(context.Background(), alice, CreateInput{Title: "A"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), bob, CreateInput{Title: "B"})
	require.NoError(t, err)

	projects, total, err := service.List(context.Background(), alice, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, "A", projects[0].Title)
}

func TestService_Update_ReDerivesSlug(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{Title: "Old Title"})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), alice, created.ID, UpdateInput{
		Title:       "New Title",
		Description: "changed",
	})
	require.NoError(t, err)

	assert.Equal(t, "new-title", updated.Slug)
	assert.Equal(t, "changed", updated.Description)
}

func TestService_Delete_ForeignProjectHidden(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{Title: "Mine"})
	require.NoError(t, err)

	err = service.Delete(context.Background(), bob, created.ID)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	// Still present for the owner.
	_, err = service.Get(context.Background(), alice, created.ID)
	assert.NoError(t, err)
}

// # History

func TestService_RecordHistory(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{Title: "Mine"})
	require.NoError(t, err)

	entry, err := service.RecordHistory(context.Background(), alice, created.ID, HistoryInput{
		Action: ActionTrim,
		Params: map[string]any{"start": 0, "end": 12.5},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, entry.ProjectID)
	assert.Equal(t, ActionTrim, entry.Action)

	entries, total, err := service.ListHistory(context.Background(), alice, created.ID, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestService_RecordHistory_NilParamsBecomeEmptyObject(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{Title: "Mine"})
	require.NoError(t, err)

	entry, err := service.RecordHistory(context.Background(), alice, created.ID, HistoryInput{
		Action: ActionCrop,
	})
	require.NoError(t, err)

	assert.NotNil(t, entry.Params)
	assert.Empty(t, entry.Params)
}

func TestService_ListHistory_ForeignProjectHidden(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), alice, CreateInput{Title: "Mine"})
	require.NoError(t, err)

	_, _, err = service.ListHistory(context.Background(), bob, created.ID, pagination.Params{Page: 1, Limit: 20})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}
