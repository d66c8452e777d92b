// Copyright (c) 2026 Clipflow. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// # Password Digests

const (
	// hashAlgorithmTag identifies the KDF in stored digest records so the
	// algorithm can evolve without invalidating existing digests.
	hashAlgorithmTag = "pbkdf2_sha256"

	// DefaultHashIterations is the PBKDF2 work factor applied to new digests.
	// Old digests keep the iteration count they were created with.
	DefaultHashIterations = 390_000

	// hashSaltBytes is the entropy of the per-digest random salt.
	hashSaltBytes = 16

	// hashKeyBytes is the length of the derived key (SHA-256 output size).
	hashKeyBytes = sha256.Size
)

// ErrEmptyPassword is returned by [PasswordHasher.Hash] for an empty input.
var ErrEmptyPassword = errors.New("sec: password cannot be empty")

// PasswordHasher derives and verifies salted PBKDF2-SHA256 password digests.
//
// # Digest Format
//
// A digest record is one self-describing string:
//
//	pbkdf2_sha256$<iterations>$<salt>$<derivedKeyBase64url>
//
// All four fields are recoverable from the record, so verification never
// depends on runtime configuration matching the configuration at hash time.
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher constructs a hasher with the given work factor.
// Non-positive iteration counts fall back to [DefaultHashIterations].
func NewPasswordHasher(iterations int) *PasswordHasher {
	if iterations <= 0 {
		iterations = DefaultHashIterations
	}
	return &PasswordHasher{iterations: iterations}
}

// Hash derives a fresh digest record for the given plain-text password.
//
// A new random salt is generated on every call, so hashing the same password
// twice yields two different records.
func (hasher *PasswordHasher) Hash(plainTextPassword string) (string, error) {
	if plainTextPassword == "" {
		return "", ErrEmptyPassword
	}

	saltBytes := make([]byte, hashSaltBytes)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}

	// The salt is stored (and fed to the KDF) in its encoded form so the
	// record stays a plain single-line string.
	salt := base64.RawURLEncoding.EncodeToString(saltBytes)

	derivedKey := pbkdf2.Key([]byte(plainTextPassword), []byte(salt), hasher.iterations, hashKeyBytes, sha256.New)
	encodedKey := base64.RawURLEncoding.EncodeToString(derivedKey)

	return fmt.Sprintf("%s$%d$%s$%s", hashAlgorithmTag, hasher.iterations, salt, encodedKey), nil
}

// Verify reports whether the plain-text password matches the digest record.
//
// # Fail-Closed
//
// Malformed records, unknown algorithm tags, and non-numeric iteration counts
// all return false. Verify never returns an error: a digest that cannot be
// parsed is simply a digest that cannot match.
func (hasher *PasswordHasher) Verify(plainTextPassword, digestRecord string) bool {
	parts := strings.SplitN(digestRecord, "$", 4)
	if len(parts) != 4 {
		return false
	}

	algorithm, iterationsField, salt, encodedKey := parts[0], parts[1], parts[2], parts[3]
	if algorithm != hashAlgorithmTag {
		return false
	}

	iterations, err := strconv.Atoi(iterationsField)
	if err != nil || iterations <= 0 {
		return false
	}

	storedKey, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return false
	}

	// Recompute with the stored salt and iteration count, then compare the
	// derived bytes in constant time to avoid timing side channels.
	derivedKey := pbkdf2.Key([]byte(plainTextPassword), []byte(salt), iterations, len(storedKey), sha256.New)

	return subtle.ConstantTimeCompare(derivedKey, storedKey) == 1
}
