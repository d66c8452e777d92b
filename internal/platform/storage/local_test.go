// Copyright (c) 2026 Clipflow. All rights reserved.

package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	return store
}

func TestLocalStore_AppendAccumulates(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateTemp("session-a"))

	first, err := store.AppendTemp("session-a", strings.NewReader("hello "))
	require.NoError(t, err)
	assert.Equal(t, int64(6), first)

	second, err := store.AppendTemp("session-a", strings.NewReader("world"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), second)

	size, err := store.TempSize("session-a")
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
}

func TestLocalStore_CreateTemp_Collision(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateTemp("dup"))

	assert.Error(t, store.CreateTemp("dup"))
}

func TestLocalStore_AppendTemp_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AppendTemp("ghost", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Promote(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateTemp("staging"))
	_, err := store.AppendTemp("staging", strings.NewReader("payload"))
	require.NoError(t, err)

	require.NoError(t, store.Promote("staging", "final.mp4"))

	// Staging file is gone, media file carries the content.
	_, err = store.TempSize("staging")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.FileExists(t, store.MediaPath("final.mp4"))
}

func TestLocalStore_Promote_Missing(t *testing.T) {
	store := newTestStore(t)

	assert.ErrorIs(t, store.Promote("ghost", "never.mp4"), ErrNotFound)
}

func TestLocalStore_SaveStream_Limit(t *testing.T) {
	store := newTestStore(t)

	written, err := store.SaveStream("ok.mp4", strings.NewReader("12345"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), written)

	_, err = store.SaveStream("big.mp4", strings.NewReader("12345678901"), 10)
	assert.Error(t, err)
	assert.NoFileExists(t, store.MediaPath("big.mp4"))
}

func TestLocalStore_RemoveTemp_Idempotent(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.RemoveTemp("ghost"))
}
