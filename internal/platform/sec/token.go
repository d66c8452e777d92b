// Copyright (c) 2026 Clipflow. All rights reserved.

// Package sec provides the cryptographic primitives of the Clipflow API:
// password key derivation and signed access tokens.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It is
// injected into the application layer via small interfaces (token verifier,
// password hasher) so domain services never touch key material directly.
//
// Tokens are deliberately implemented as a small protocol rather than via a
// JWT library: signature verification is unconditional and constant-time, and
// it always runs before a single claim byte is decoded or trusted.
package sec

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// # Token Errors

var (
	// ErrMalformedToken is returned when a token does not consist of exactly
	// three dot-separated segments or a segment cannot be decoded.
	ErrMalformedToken = errors.New("sec: malformed token")

	// ErrBadSignature is returned when the recomputed signature does not match
	// the supplied one. Claims are never decoded when this error occurs.
	ErrBadSignature = errors.New("sec: invalid token signature")

	// ErrExpiredToken is returned when the signature is valid but the token's
	// exp claim is at or before the current time.
	ErrExpiredToken = errors.New("sec: token expired")
)

// Claims is the flat key/value payload embedded in an access token.
//
// Numeric values decode as [json.Number] so integer identifiers survive the
// round trip without floating-point loss.
type Claims map[string]any

// MemberID extracts the "id" claim as an integer member identifier.
func (c Claims) MemberID() (int64, bool) {
	switch value := c["id"].(type) {
	case json.Number:
		id, err := value.Int64()
		return id, err == nil
	case float64:
		return int64(value), true
	case int64:
		return value, true
	default:
		return 0, false
	}
}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	MemberID int64
	Email    string
}

// # Token Service

// tokenHeader is the fixed header segment of every issued token.
// Marshalled with sorted keys it is byte-stable across processes.
var tokenHeader = map[string]string{"alg": "HS256", "typ": "JWT"}

// TokenService creates and verifies signed, time-limited access tokens.
//
// # Statelessness
//
// Any process holding the shared secret can verify tokens issued by any other
// process holding the same secret, so no server-side session state is needed.
// The secret is process-wide, read-only after construction, and must never be
// logged or serialized.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService constructs a TokenService around the shared signing secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: token secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs the given claims into a token valid for ttl.
//
// The "exp" claim is set (or overwritten) to now + ttl as integer seconds
// since the epoch. Header and claims are serialized as compact JSON with
// stable key ordering, so the signature is reproducible and auditable.
//
// Wire format: base64url(header) "." base64url(claims) "." base64url(sig),
// all segments unpadded, with sig = HMAC-SHA256(secret, header "." claims).
func (service *TokenService) Issue(claims Claims, ttl time.Duration) (string, error) {
	payload := make(map[string]any, len(claims)+1)
	for key, value := range claims {
		payload[key] = value
	}
	payload["exp"] = service.now().Add(ttl).Unix()

	// encoding/json marshals map keys in sorted order and emits no
	// superfluous whitespace, which is exactly the determinism we need.
	headerJSON, err := json.Marshal(tokenHeader)
	if err != nil {
		return "", fmt.Errorf("sec: failed to encode token header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("sec: failed to encode token claims: %w", err)
	}

	headerSegment := base64.RawURLEncoding.EncodeToString(headerJSON)
	payloadSegment := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signature := service.sign(headerSegment + "." + payloadSegment)

	return headerSegment + "." + payloadSegment + "." + signature, nil
}

// Verify checks a token string and returns its claims.
//
// # Check Ordering
//
// The order of checks is a hard invariant:
//
//  1. Structure: exactly three segments, else [ErrMalformedToken].
//  2. Signature: recomputed over the first two segments and compared in
//     constant time, else [ErrBadSignature]. This happens BEFORE the claims
//     segment is decoded, so untrusted bytes are never parsed.
//  3. Expiry: exp <= now fails with [ErrExpiredToken] regardless of how
//     valid the signature is.
func (service *TokenService) Verify(tokenString string) (Claims, error) {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return nil, ErrMalformedToken
	}
	headerSegment, payloadSegment, signatureSegment := segments[0], segments[1], segments[2]

	expected := service.sign(headerSegment + "." + payloadSegment)
	if !hmac.Equal([]byte(expected), []byte(signatureSegment)) {
		return nil, ErrBadSignature
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(payloadSegment)
	if err != nil {
		return nil, ErrMalformedToken
	}

	decoder := json.NewDecoder(bytes.NewReader(payloadJSON))
	decoder.UseNumber()

	claims := Claims{}
	if err := decoder.Decode(&claims); err != nil {
		return nil, ErrMalformedToken
	}

	if service.expiry(claims) <= service.now().Unix() {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

// sign computes the unpadded base64url HMAC-SHA256 over the signing input.
func (service *TokenService) sign(signingInput string) string {
	mac := hmac.New(sha256.New, service.secret)
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// expiry extracts the exp claim. A missing or unreadable exp reads as zero,
// which always fails the freshness check.
func (service *TokenService) expiry(claims Claims) int64 {
	switch value := claims["exp"].(type) {
	case json.Number:
		exp, err := value.Int64()
		if err != nil {
			return 0
		}
		return exp
	case float64:
		return int64(value)
	default:
		return 0
	}
}
