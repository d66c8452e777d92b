// Copyright (c) 2026 Clipflow. All rights reserved.

/*
Package storage provides local filesystem persistence for uploaded media.

It manages two disk areas:

  - Temp root: staging files for in-flight chunked uploads. Content here is
    disposable and may be reclaimed at any time once a session is abandoned.
  - Media root: the permanent home of completed assets. Files are written
    here exactly once and never mutated afterwards.

All paths handed to callers are relative storage keys; the store resolves
them against its roots so absolute filesystem layout never leaks into the
domain layer.
*/
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a storage key does not resolve to a file.
var ErrNotFound = errors.New("storage: file not found")

// ErrTooLarge is returned by SaveStream when the stream exceeds its limit.
var ErrTooLarge = errors.New("storage: stream exceeds size limit")

// LocalStore persists files under a temp root and a media root on local disk.
type LocalStore struct {
	tempRoot  string
	mediaRoot string
}

// NewLocalStore creates both roots if needed and returns a ready store.
func NewLocalStore(tempRoot, mediaRoot string) (*LocalStore, error) {
	for _, root := range []string{tempRoot, mediaRoot} {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("storage: failed to create root %q: %w", root, err)
		}
	}

	return &LocalStore{tempRoot: tempRoot, mediaRoot: mediaRoot}, nil
}

// TempPath resolves a staging key to its absolute filesystem path.
func (s *LocalStore) TempPath(key string) string {
	return filepath.Join(s.tempRoot, filepath.Base(key))
}

// MediaPath resolves a permanent key to its absolute filesystem path.
func (s *LocalStore) MediaPath(key string) string {
	return filepath.Join(s.mediaRoot, filepath.Base(key))
}

// CreateTemp creates an empty staging file for the given key. It fails if
// the file already exists, which guards against key collisions.
func (s *LocalStore) CreateTemp(key string) error {
	file, err := os.OpenFile(s.TempPath(key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage: failed to create temp file: %w", err)
	}

	return file.Close()
}

// AppendTemp appends the reader's content to an existing staging file and
// returns the number of bytes written.
func (s *LocalStore) AppendTemp(key string, reader io.Reader) (int64, error) {
	file, err := os.OpenFile(s.TempPath(key), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("storage: failed to open temp file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return written, fmt.Errorf("storage: append failed after %d bytes: %w", written, err)
	}

	// Flush to stable storage before the byte counter is persisted.
	if err := file.Sync(); err != nil {
		return written, fmt.Errorf("storage: sync failed: %w", err)
	}

	return written, nil
}

// TempSize reports the current on-disk size of a staging file.
func (s *LocalStore) TempSize(key string) (int64, error) {
	info, err := os.Stat(s.TempPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("storage: stat failed: %w", err)
	}

	return info.Size(), nil
}

// Promote moves a staging file into the media root under a new key.
// os.Rename is atomic on the same filesystem; when the roots live on
// different devices it falls back to copy-then-delete.
func (s *LocalStore) Promote(tempKey, mediaKey string) error {
	source := s.TempPath(tempKey)
	destination := s.MediaPath(mediaKey)

	if err := os.Rename(source, destination); err == nil {
		return nil
	} else if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}

	if err := copyFile(source, destination); err != nil {
		return err
	}

	return os.Remove(source)
}

// SaveStream writes the reader's content directly to the media root,
// enforcing a hard byte limit. It returns the number of bytes written.
// If the stream exceeds limitBytes the partial file is removed and an
// error is returned.
func (s *LocalStore) SaveStream(mediaKey string, reader io.Reader, limitBytes int64) (int64, error) {
	destination := s.MediaPath(mediaKey)

	file, err := os.OpenFile(destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("storage: failed to create media file: %w", err)
	}
	defer file.Close()

	// Read one byte past the limit to detect oversized streams.
	written, err := io.Copy(file, io.LimitReader(reader, limitBytes+1))
	if err != nil {
		_ = os.Remove(destination)
		return 0, fmt.Errorf("storage: stream write failed: %w", err)
	}

	if written > limitBytes {
		_ = os.Remove(destination)
		return 0, fmt.Errorf("%w (%d bytes allowed)", ErrTooLarge, limitBytes)
	}

	if err := file.Sync(); err != nil {
		_ = os.Remove(destination)
		return 0, fmt.Errorf("storage: sync failed: %w", err)
	}

	return written, nil
}

// RemoveTemp deletes a staging file. Missing files are not an error so
// cleanup paths stay idempotent.
func (s *LocalStore) RemoveTemp(key string) error {
	if err := os.Remove(s.TempPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: failed to remove temp file: %w", err)
	}

	return nil
}

// RemoveMedia deletes a permanent file. Missing files are not an error.
func (s *LocalStore) RemoveMedia(key string) error {
	if err := os.Remove(s.MediaPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: failed to remove media file: %w", err)
	}

	return nil
}

// copyFile is the cross-device fallback for Promote.
func copyFile(source, destination string) error {
	input, err := os.Open(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: failed to open source: %w", err)
	}
	defer input.Close()

	output, err := os.OpenFile(destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage: failed to create destination: %w", err)
	}
	defer output.Close()

	if _, err := io.Copy(output, input); err != nil {
		_ = os.Remove(destination)
		return fmt.Errorf("storage: copy failed: %w", err)
	}

	return output.Sync()
}
