// Copyright (c) 2026 Clipflow. All rights reserved.

/*
Package upload implements the resumable chunked upload protocol.

A client declares a file's name, size, and type up front (init), streams
it in arbitrary-size chunks bound to the session handle and owning
project (append), and promotes the staged bytes into a permanent asset
(complete). Sessions that go quiet are reclaimed by a background sweeper.

# Consistency

The staged temp file and the persisted received_size counter are updated
in two separate operations, write-then-persist. The persisted counter is
authoritative for the overflow check; at completion the actual temp-file
byte length is cross-checked against the declared total so a counter that
drifted from the filesystem can never produce a short or padded asset.
*/
package upload

import "time"

// # Domain Entities

// State describes where a session sits in its lifecycle. Completed
// sessions have no state: their record is removed.
type State string

const (
	// StateInitiated means the session exists but no bytes have arrived.
	StateInitiated State = "initiated"
	// StateReceiving means at least one chunk has been appended.
	StateReceiving State = "receiving"
)

// Session is one in-progress chunked upload.
type Session struct {
	ID           string    `json:"upload_id"` // UUID handle, public.
	ProjectID    int64     `json:"project_id"`
	Filename     string    `json:"filename"`
	Mime         string    `json:"mime"`
	TotalSize    int64     `json:"total_size"`
	ReceivedSize int64     `json:"received_size"`
	TempKey      string    `json:"-"` // Staging key, never serialized.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// State derives the lifecycle state from the received counter.
func (session *Session) State() State {
	if session.ReceivedSize == 0 {
		return StateInitiated
	}
	return StateReceiving
}

// Age reports how long ago the session last made progress. The sweeper
// uses this to find abandoned sessions.
func (session *Session) Age(now time.Time) time.Duration {
	return now.Sub(session.UpdatedAt)
}

// Done reports whether every declared byte has been received.
func (session *Session) Done() bool {
	return session.ReceivedSize == session.TotalSize
}

// # Field Identifiers

const (
	FieldUploadID     = "upload_id"
	FieldChunkSize    = "chunk_size"
	FieldReceivedSize = "received_size"
	FieldDone         = "done"
)
