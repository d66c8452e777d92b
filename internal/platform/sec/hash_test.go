// Copyright (c) 2026 Clipflow. All rights reserved.

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipflow/clipflow/internal/platform/sec"
)

// testIterations keeps the KDF cheap in unit tests. Verification reads the
// iteration count from the record itself, so this does not affect semantics.
const testIterations = 1_000

/*
TestPasswordHasher_RoundTrip checks that a password verifies against its own
digest and that a different password does not.
*/
func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewPasswordHasher(testIterations)

	tests := []struct {
		name     string
		password string
	}{
		{"ascii", "correct horse battery staple"},
		{"unicode", "pässwörd-日本語"},
		{"long", strings.Repeat("x", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := hasher.Hash(tt.password)
			require.NoError(t, err)

			assert.True(t, hasher.Verify(tt.password, digest))
			assert.False(t, hasher.Verify(tt.password+"!", digest))
		})
	}
}

/*
TestPasswordHasher_Hash_Empty rejects empty passwords outright.
*/
func TestPasswordHasher_Hash_Empty(t *testing.T) {
	hasher := sec.NewPasswordHasher(testIterations)

	_, err := hasher.Hash("")
	assert.ErrorIs(t, err, sec.ErrEmptyPassword)
}

/*
TestPasswordHasher_SaltRandomness hashes the same password twice and expects
two different records.
*/
func TestPasswordHasher_SaltRandomness(t *testing.T) {
	hasher := sec.NewPasswordHasher(testIterations)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same-password", first))
	assert.True(t, hasher.Verify("same-password", second))
}

/*
TestPasswordHasher_DigestFormat checks the four-field self-describing record.
*/
func TestPasswordHasher_DigestFormat(t *testing.T) {
	hasher := sec.NewPasswordHasher(testIterations)

	digest, err := hasher.Hash("format-check")
	require.NoError(t, err)

	parts := strings.SplitN(digest, "$", 4)
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2_sha256", parts[0])
	assert.Equal(t, "1000", parts[1])
	assert.NotEmpty(t, parts[2])
	assert.NotEmpty(t, parts[3])
}

/*
TestPasswordHasher_Verify_FailClosed feeds malformed digest records into
Verify, which must return false rather than erroring.
*/
func TestPasswordHasher_Verify_FailClosed(t *testing.T) {
	hasher := sec.NewPasswordHasher(testIterations)

	tests := []struct {
		name   string
		record string
	}{
		{"empty", ""},
		{"garbage", "not-a-digest"},
		{"too_few_fields", "pbkdf2_sha256$1000$salt"},
		{"unknown_algorithm", "scrypt$1000$salt$aGFzaA"},
		{"non_numeric_iterations", "pbkdf2_sha256$lots$salt$aGFzaA"},
		{"negative_iterations", "pbkdf2_sha256$-5$salt$aGFzaA"},
		{"bad_key_encoding", "pbkdf2_sha256$1000$salt$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, hasher.Verify("whatever", tt.record))
		})
	}
}

/*
TestPasswordHasher_Verify_StoredIterations verifies against a record created
with a different work factor than the live hasher's, which must still pass
because the iteration count is read from the record.
*/
func TestPasswordHasher_Verify_StoredIterations(t *testing.T) {
	oldHasher := sec.NewPasswordHasher(500)
	digest, err := oldHasher.Hash("migrating-password")
	require.NoError(t, err)

	newHasher := sec.NewPasswordHasher(testIterations)
	assert.True(t, newHasher.Verify("migrating-password", digest))
}
