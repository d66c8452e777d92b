// Copyright (c) 2026 Clipflow. All rights reserved.

/*
Package asset implements video assets attached to editing projects.

Assets arrive either through the single-shot multipart endpoint handled
here, or through the chunked upload protocol (internal/upload) which
creates asset records on completion. Both paths enforce the same type and
size constraints and store bytes under the media root keyed by a
time-ordered UUID.
*/
package asset

import "time"

// # Domain Entities

// Asset represents one stored video file belonging to a project.
type Asset struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	Mime         string    `json:"mime"`
	File         string    `json:"file"` // Storage key under the media root.
	CreatedAt    time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldFile     = "file"
	FieldFilename = "filename"
	FieldMime     = "mime"
	FieldSize     = "size"
)
