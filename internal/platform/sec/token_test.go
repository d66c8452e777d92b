// Copyright (c) 2026 Clipflow. All rights reserved.

package sec_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipflow/clipflow/internal/platform/sec"
)

const testSecret = "unit-test-signing-secret"

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_IssueAndVerify checks the issue/verify round trip: the
returned claims must equal the input claims plus an exp field.
*/
func TestTokenService_IssueAndVerify(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.Issue(sec.Claims{"id": int64(42), "email": "edit@clipflow.app"}, time.Hour)
	require.NoError(t, err)

	// Wire format: three unpadded base64url segments.
	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)
	for _, segment := range segments {
		assert.NotContains(t, segment, "=")
		_, err := base64.RawURLEncoding.DecodeString(segment)
		assert.NoError(t, err)
	}

	claims, err := service.Verify(token)
	require.NoError(t, err)

	memberID, ok := claims.MemberID()
	require.True(t, ok)
	assert.Equal(t, int64(42), memberID)
	assert.Equal(t, "edit@clipflow.app", claims["email"])
	assert.Contains(t, claims, "exp")
}

/*
TestTokenService_Verify_Malformed covers strings that do not split into
exactly three segments.
*/
func TestTokenService_Verify_Malformed(t *testing.T) {
	service := newTestTokenService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one_segment", "abc"},
		{"two_segments", "abc.def"},
		{"four_segments", "a.b.c.d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Verify(tt.token)
			assert.ErrorIs(t, err, sec.ErrMalformedToken)
		})
	}
}

/*
TestTokenService_Verify_TamperedSignature flips bytes in the signature
segment of a valid token and expects a signature failure for every position.
*/
func TestTokenService_Verify_TamperedSignature(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.Issue(sec.Claims{"id": int64(1)}, time.Hour)
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	signature := []byte(segments[2])
	for i := range signature {
		tampered := make([]byte, len(signature))
		copy(tampered, signature)
		tampered[i] ^= 1

		forged := segments[0] + "." + segments[1] + "." + string(tampered)
		_, verr := service.Verify(forged)
		assert.ErrorIs(t, verr, sec.ErrBadSignature, "tampered byte %d must invalidate the token", i)
	}
}

/*
TestTokenService_Verify_TamperedClaims modifies the claims segment, which
must surface as a signature failure (the signature binds header+claims).
*/
func TestTokenService_Verify_TamperedClaims(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.Issue(sec.Claims{"id": int64(1)}, time.Hour)
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	forgedClaims := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":99999999999,"id":2}`))

	_, err = service.Verify(segments[0] + "." + forgedClaims + "." + segments[2])
	assert.ErrorIs(t, err, sec.ErrBadSignature)
}

/*
TestTokenService_Verify_Expired issues an already-expired token and expects
an expiry error, never a signature error.
*/
func TestTokenService_Verify_Expired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.Issue(sec.Claims{"id": int64(9)}, -time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(token)
	assert.ErrorIs(t, err, sec.ErrExpiredToken)
	assert.NotErrorIs(t, err, sec.ErrBadSignature)
}

/*
TestTokenService_Verify_WrongSecret confirms that tokens signed under a
different secret are rejected before claims are trusted.
*/
func TestTokenService_Verify_WrongSecret(t *testing.T) {
	issuer, err := sec.NewTokenService("secret-a")
	require.NoError(t, err)
	verifier, err := sec.NewTokenService("secret-b")
	require.NoError(t, err)

	token, err := issuer.Issue(sec.Claims{"id": int64(3)}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, sec.ErrBadSignature)
}

/*
TestNewTokenService_EmptySecret rejects construction without key material.
*/
func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("")
	assert.Error(t, err)
}
