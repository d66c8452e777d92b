// Copyright (c) 2026 Clipflow. All rights reserved.

/*
Package project implements editing projects and their recorded history.

A project is the unit of ownership in Clipflow: every asset and every
history entry hangs off a project, and every operation on those resources
is authorized against the project's owner.

# Architecture

Entities and authorization rules live here with no transport or storage
dependencies; pgx repositories and the chi handler adapt them outward.
*/
package project

import "time"

// # Domain Entities

// Project represents an editing project owned by a single member.
type Project struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HistoryEntry records a single editing action applied to a project.
//
// Params is free-form: the editing frontend owns its shape, the backend
// only guarantees it round-trips as JSON.
type HistoryEntry struct {
	ID        int64          `json:"id"`
	ProjectID int64          `json:"project_id"`
	Action    string         `json:"action"`
	Params    map[string]any `json:"params"`
	CreatedAt time.Time      `json:"created_at"`
}

// # Actions

// Editing actions accepted in the history log.
const (
	ActionTrim    = "trim"
	ActionMerge   = "merge"
	ActionAddText = "add_text"
	ActionCrop    = "crop"
)

// Actions enumerates every accepted history action for validation.
var Actions = []string{ActionTrim, ActionMerge, ActionAddText, ActionCrop}

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldAction      = "action"
	FieldParams      = "params"
)
