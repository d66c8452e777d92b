// Copyright (c) 2026 Clipflow. All rights reserved.

/*
Package member implements the user identity layer of Clipflow.

It defines the Member entity together with registration, login, and
profile resolution. Authentication state is stateless: a login issues a
signed token carrying the member's id and email, and subsequent requests
resolve the member through a Redis read-through cache.

# Architecture

This layer is the "Truth" of identity. Entities defined here have no
external dependencies and encapsulate all business rules related to
member accounts.
*/
package member

import "time"

// # Domain Entities

// Member represents a registered member of the Clipflow platform.
type Member struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the member domain.
const (
	FieldEmail    = "email"
	FieldName     = "name"
	FieldPassword = "password"
	FieldToken    = "token"
	FieldMember   = "member"
)

// Token claim keys carried in the signed access token payload.
const (
	ClaimID    = "id"
	ClaimEmail = "email"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 6
