// Copyright (c) 2026 Clipflow. All rights reserved.

package member

import (
	"context"
	"fmt"
	"time"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/constants"
	"github.com/clipflow/clipflow/internal/platform/ctxutil"
	"github.com/clipflow/clipflow/internal/platform/sec"
)

// # Contracts & Types

// PasswordHasher defines the contract for credential hashing.
type PasswordHasher interface {
	// Hash derives a self-describing digest record from a raw password.
	Hash(raw string) (string, error)
	// Verify reports whether raw matches the stored digest record.
	Verify(raw, record string) bool
}

// TokenIssuer defines the contract for minting signed access tokens.
type TokenIssuer interface {
	// Issue signs the given claims with an expiry of now + timeToLive.
	Issue(claims sec.Claims, timeToLive time.Duration) (string, error)
}

// Service implements member authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	repository    Repository
	identityCache IdentityCache
	hasher        PasswordHasher
	tokenIssuer   TokenIssuer
}

// NewService constructs a new member [Service] with necessary dependencies.
func NewService(repository Repository, cache IdentityCache, hasher PasswordHasher, issuer TokenIssuer) *Service {
	return &Service{
		repository:    repository,
		identityCache: cache,
		hasher:        hasher,
		tokenIssuer:   issuer,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

/*
Register validates, hashes, and persists a brand new member account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Member: Created entity
  - error: Conflict (if email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Member, error) {

	// Verify email uniqueness. Return a client-safe Conflict error.
	// The unique index remains the authority under concurrent registration.
	if _, err := service.repository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.ValidationError("Password cannot be empty")
	}

	created := &Member{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
	}

	if err := service.repository.Create(context, created); err != nil {
		return nil, fmt.Errorf("member_service_register_failed: %w", err)
	}

	return created, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established stateless session.
type LoginSession struct {
	Token  string
	Member *Member
}

/*
Login validates member credentials and issues a signed access token.

Description: Both an unknown email and a wrong password produce the same
generic Unauthorized error to prevent account enumeration.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready token and profile
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	found, err := service.repository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// Constant-time comparison inside Verify prevents timing attacks.
	if !service.hasher.Verify(input.Password, found.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	token, err := service.tokenIssuer.Issue(sec.Claims{
		ClaimID:    found.ID,
		ClaimEmail: found.Email,
	}, constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("member_service_token_issue_failed: %w", err)
	}

	return &LoginSession{Token: token, Member: found}, nil
}

// # Profile & Identity Resolution

/*
Profile returns the full account for the given member ID.

Parameters:
  - context: context.Context
  - memberID: int64

Returns:
  - *Member: Hydrated entity
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Profile(context context.Context, memberID int64) (*Member, error) {
	return service.repository.FindByID(context, memberID)
}

/*
ResolveIdentity maps a verified token subject to an active member identity.

Description: Read-through cache. Cache connectivity problems are logged and
ignored so authentication never depends on Redis availability.

Parameters:
  - context: context.Context
  - memberID: int64

Returns:
  - *sec.Identity: Minimal identity attached to request context
  - error: apperr.NotFound when the account no longer exists
*/
func (service *Service) ResolveIdentity(context context.Context, memberID int64) (*sec.Identity, error) {
	cached, err := service.identityCache.Get(context, memberID)
	if err != nil {
		ctxutil.GetLogger(context).Warn("identity_cache_unavailable", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	found, err := service.repository.FindByID(context, memberID)
	if err != nil {
		return nil, err
	}

	identity := &sec.Identity{MemberID: found.ID, Email: found.Email}

	// Best-effort population; a failed write only costs the next lookup.
	if err := service.identityCache.Set(context, identity); err != nil {
		ctxutil.GetLogger(context).Warn("identity_cache_set_failed", "error", err)
	}

	return identity, nil
}
