// Copyright (c) 2026 Clipflow. All rights reserved.

package upload

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipflow/clipflow/internal/asset"
	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/constants"
	"github.com/clipflow/clipflow/internal/platform/sec"
	"github.com/clipflow/clipflow/internal/platform/storage"
	"github.com/clipflow/clipflow/internal/project"
	"github.com/clipflow/clipflow/pkg/pagination"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # Test Doubles

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: make(map[string]*Session)}
}

func (r *memorySessionRepository) Create(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memorySessionRepository) FindByHandle(_ context.Context, handle string, projectID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found, exists := r.sessions[handle]
	if !exists || found.ProjectID != projectID {
		return nil, apperr.NotFound("Upload session")
	}
	copied := *found
	return &copied, nil
}

func (r *memorySessionRepository) UpdateReceived(_ context.Context, handle string, receivedSize int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found, exists := r.sessions[handle]
	if !exists {
		return apperr.NotFound("Upload session")
	}
	found.ReceivedSize = receivedSize
	found.UpdatedAt = time.Now()
	return nil
}

func (r *memorySessionRepository) Delete(_ context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[handle]; !exists {
		return apperr.NotFound("Upload session")
	}
	delete(r.sessions, handle)
	return nil
}

func (r *memorySessionRepository) ListIdleSince(_ context.Context, cutoff time.Time) ([]*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idle := make([]*Session, 0)
	for _, session := range r.sessions {
		if session.UpdatedAt.Before(cutoff) {
			copied := *session
			idle = append(idle, &copied)
		}
	}
	return idle, nil
}

type memoryAssetRepository struct {
	mu     sync.Mutex
	nextID int64
	assets []*asset.Asset
}

func (r *memoryAssetRepository) Create(_ context.Context, created *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	copied := *created
	r.assets = append(r.assets, &copied)
	return nil
}

func (r *memoryAssetRepository) ListByProject(context.Context, int64, pagination.Params) ([]*asset.Asset, int64, error) {
	return nil, 0, nil
}

// stubAuthorizer grants project 1 to member 1 and hides everything else.
type stubAuthorizer struct{}

func (stubAuthorizer) Authorize(_ context.Context, identity *sec.Identity, projectID int64) (*project.Project, error) {
	if identity != nil && identity.MemberID == 1 && projectID == 1 {
		return &project.Project{ID: 1, OwnerID: 1}, nil
	}
	return nil, apperr.NotFound("Project")
}

type fixture struct {
	coordinator *Coordinator
	sessions    *memorySessionRepository
	assets      *memoryAssetRepository
	files       *storage.LocalStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files, err := storage.NewLocalStore(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	sessions := newMemorySessionRepository()
	assets := &memoryAssetRepository{}

	return &fixture{
		coordinator: NewCoordinator(sessions, assets, stubAuthorizer{}, files),
		sessions:    sessions,
		assets:      assets,
		files:       files,
	}
}

var owner = &sec.Identity{MemberID: 1, Email: "owner@example.com"}

func initSession(t *testing.T, f *fixture, size int64) string {
	t.Helper()

	result, err := f.coordinator.Init(context.Background(), owner, 1, InitInput{
		Filename: "clip.mp4",
		Size:     size,
		Mime:     "video/mp4",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.UploadID)
	require.Equal(t, int64(constants.UploadChunkBytes), result.ChunkSize)

	return result.UploadID
}

// # Initiation

func TestCoordinator_Init_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		input      InitInput
		wantStatus int
	}{
		{name: "empty_filename", input: InitInput{Filename: "", Size: 100, Mime: "video/mp4"}, wantStatus: 400},
		{name: "wrong_extension", input: InitInput{Filename: "clip.mov", Size: 100, Mime: "video/mp4"}, wantStatus: 400},
		{name: "wrong_mime", input: InitInput{Filename: "clip.mp4", Size: 100, Mime: "video/webm"}, wantStatus: 400},
		{name: "zero_size", input: InitInput{Filename: "clip.mp4", Size: 0, Mime: "video/mp4"}, wantStatus: 400},
		{name: "negative_size", input: InitInput{Filename: "clip.mp4", Size: -5, Mime: "video/mp4"}, wantStatus: 400},
		{name: "over_ceiling", input: InitInput{Filename: "clip.mp4", Size: constants.MaxUploadBytes + 1, Mime: "video/mp4"}, wantStatus: 413},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := f.coordinator.Init(context.Background(), owner, 1, testCase.input)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, testCase.wantStatus, appError.HTTPStatus)
		})
	}
}

func TestCoordinator_Init_ForeignProjectHidden(t *testing.T) {
	f := newFixture(t)
	stranger := &sec.Identity{MemberID: 2}

	_, err := f.coordinator.Init(context.Background(), stranger, 1, InitInput{
		Filename: "clip.mp4", Size: 100, Mime: "video/mp4",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestCoordinator_Init_CreatesEmptyTempFile(t *testing.T) {
	f := newFixture(t)

	handle := initSession(t, f, 100)

	size, err := f.files.TempSize(tempKeyFor(handle))
	require.NoError(t, err)
	assert.Zero(t, size)
}

// # Chunk Append

func TestCoordinator_AppendSequence(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1_500_000)

	chunk := bytes.Repeat([]byte{0xAB}, 500_000)

	for step := 1; step <= 3; step++ {
		result, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, chunk)
		require.NoError(t, err)

		assert.Equal(t, int64(step)*500_000, result.ReceivedSize)
		assert.Equal(t, step == 3, result.Done)
	}

	// A fourth append of any size overflows.
	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, []byte{0x01})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestCoordinator_Append_OverflowLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1_500_000)

	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, bytes.Repeat([]byte{0x01}, 1_400_000))
	require.NoError(t, err)

	// 1,400,000 + 200,000 > 1,500,000: rejected before any write.
	_, err = f.coordinator.AppendChunk(context.Background(), owner, 1, handle, bytes.Repeat([]byte{0x02}, 200_000))
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	session, err := f.sessions.FindByHandle(context.Background(), handle, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1_400_000), session.ReceivedSize)

	actual, err := f.files.TempSize(tempKeyFor(handle))
	require.NoError(t, err)
	assert.Equal(t, int64(1_400_000), actual)
}

func TestCoordinator_Append_EmptyChunkRejected(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 100)

	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, nil)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestCoordinator_Append_UnknownHandle(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, "00000000-0000-7000-8000-000000000000", []byte{0x01})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestCoordinator_ConcurrentAppends(t *testing.T) {
	f := newFixture(t)

	chunkA := bytes.Repeat([]byte{0xAA}, 700)
	chunkB := bytes.Repeat([]byte{0xBB}, 300)
	handle := initSession(t, f, int64(len(chunkA)+len(chunkB)))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, chunkA)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, chunkB)
		assert.NoError(t, err)
	}()
	wg.Wait()

	session, err := f.sessions.FindByHandle(context.Background(), handle, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), session.ReceivedSize)
	assert.True(t, session.Done())

	// The staged bytes are the two chunks in some order, never interleaved.
	staged, err := os.ReadFile(f.files.TempPath(tempKeyFor(handle)))
	require.NoError(t, err)
	require.Len(t, staged, 1000)

	aFirst := append(append([]byte{}, chunkA...), chunkB...)
	bFirst := append(append([]byte{}, chunkB...), chunkA...)
	assert.True(t, bytes.Equal(staged, aFirst) || bytes.Equal(staged, bFirst))
}

// # Completion

func TestCoordinator_Complete(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1000)

	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, bytes.Repeat([]byte{0x01}, 1000))
	require.NoError(t, err)

	created, err := f.coordinator.Complete(context.Background(), owner, 1, handle)
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(1), created.ProjectID)
	assert.Equal(t, "clip.mp4", created.OriginalName)
	assert.Equal(t, int64(1000), created.Size)
	assert.Equal(t, "video/mp4", created.Mime)
	assert.NotEqual(t, "clip.mp4", created.File)

	// Bytes were promoted and the staging file is gone.
	assert.FileExists(t, f.files.MediaPath(created.File))
	_, err = f.files.TempSize(tempKeyFor(handle))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The session record is removed: a second complete is NotFound.
	_, err = f.coordinator.Complete(context.Background(), owner, 1, handle)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	// Exactly one asset was created.
	require.Len(t, f.assets.assets, 1)
}

func TestCoordinator_Complete_IncompleteIsRetriable(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1000)

	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, bytes.Repeat([]byte{0x01}, 400))
	require.NoError(t, err)

	_, err = f.coordinator.Complete(context.Background(), owner, 1, handle)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	// The session survives: more chunks then complete succeeds.
	_, err = f.coordinator.AppendChunk(context.Background(), owner, 1, handle, bytes.Repeat([]byte{0x02}, 600))
	require.NoError(t, err)

	_, err = f.coordinator.Complete(context.Background(), owner, 1, handle)
	assert.NoError(t, err)
}

func TestCoordinator_Complete_LengthMismatchIsIntegrityError(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1000)

	_, err := f.coordinator.AppendChunk(context.Background(), owner, 1, handle, bytes.Repeat([]byte{0x01}, 1000))
	require.NoError(t, err)

	// Simulate counter/filesystem divergence: truncate the staged file.
	require.NoError(t, os.Truncate(f.files.TempPath(tempKeyFor(handle)), 900))

	_, err = f.coordinator.Complete(context.Background(), owner, 1, handle)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 500, appError.HTTPStatus)
	assert.Equal(t, "INTEGRITY_ERROR", appError.Code)

	// No asset record was written.
	assert.Empty(t, f.assets.assets)
}

func TestCoordinator_Complete_WrongProjectBinding(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1000)
	stranger := &sec.Identity{MemberID: 2}

	_, err := f.coordinator.Complete(context.Background(), stranger, 1, handle)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

// # Sweeper

func TestSweeper_ReclaimsIdleSessions(t *testing.T) {
	f := newFixture(t)
	handle := initSession(t, f, 1000)

	// Age the session past the retention window.
	f.sessions.mu.Lock()
	f.sessions.sessions[handle].UpdatedAt = time.Now().Add(-48 * time.Hour)
	f.sessions.mu.Unlock()

	fresh := initSession(t, f, 1000)

	sweeper := NewSweeper(f.sessions, f.files, discardLogger(), time.Hour, 24*time.Hour)
	removed := sweeper.SweepOnce(context.Background())

	assert.Equal(t, 1, removed)

	// The idle session and its temp file are gone; the fresh one survives.
	_, err := f.sessions.FindByHandle(context.Background(), handle, 1)
	assert.Error(t, err)
	_, err = f.files.TempSize(tempKeyFor(handle))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.sessions.FindByHandle(context.Background(), fresh, 1)
	assert.NoError(t, err)
}
