// Copyright (c) 2026 Clipflow. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Clipflow", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Extension checks the filename extension rule used by uploads.
*/
func TestValidator_Extension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		isValid  bool
	}{
		{"plain_mp4", "intro.mp4", true},
		{"uppercase", "INTRO.MP4", true},
		{"wrong_container", "intro.mov", false},
		{"no_extension", "intro", false},
		{"extension_only", ".mp4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Extension("filename", tt.filename, ".mp4")

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_OneOf checks set-membership validation (edit history actions).
*/
func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"trim", "merge", "add_text", "crop"}

	valid := &validate.Validator{}
	valid.OneOf("action", "trim", allowed...)
	assert.False(t, valid.HasErrors())

	invalid := &validate.Validator{}
	invalid.OneOf("action", "explode", allowed...)
	assert.True(t, invalid.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "Launch Teaser").
		MinLen("title", "Launch Teaser", 3).
		MaxLen("title", "Launch Teaser", 200).
		Email("email", "cutter@clipflow.app").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "").          // Fails
		MinLen("title", "a", 5).        // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}
