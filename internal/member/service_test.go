// Copyright (c) 2026 Clipflow. All rights reserved.

package member

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/sec"
)

// # Test Doubles

type memoryRepository struct {
	nextID  int64
	byEmail map[string]*Member
	byID    map[int64]*Member
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		nextID:  1,
		byEmail: make(map[string]*Member),
		byID:    make(map[int64]*Member),
	}
}

func (r *memoryRepository) Create(_ context.Context, member *Member) error {
	if _, exists := r.byEmail[member.Email]; exists {
		return apperr.Conflict("Member already exists")
	}
	member.ID = r.nextID
	r.nextID++
	r.byEmail[member.Email] = member
	r.byID[member.ID] = member
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*Member, error) {
	found, exists := r.byEmail[email]
	if !exists {
		return nil, apperr.NotFound("Member not found with this email")
	}
	return found, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (*Member, error) {
	found, exists := r.byID[id]
	if !exists {
		return nil, apperr.NotFound("Member not found")
	}
	return found, nil
}

type memoryCache struct {
	entries map[int64]*sec.Identity
	gets    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[int64]*sec.Identity)}
}

func (c *memoryCache) Get(_ context.Context, memberID int64) (*sec.Identity, error) {
	c.gets++
	return c.entries[memberID], nil
}

func (c *memoryCache) Set(_ context.Context, identity *sec.Identity) error {
	c.sets++
	c.entries[identity.MemberID] = identity
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, memberID int64) error {
	delete(c.entries, memberID)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepository, *memoryCache) {
	t.Helper()

	repository := newMemoryRepository()
	cache := newMemoryCache()
	hasher := sec.NewPasswordHasher(1_000)
	tokens, err := sec.NewTokenService("test-secret")
	require.NoError(t, err)

	return NewService(repository, cache, hasher, tokens), repository, cache
}

// # Registration

func TestService_Register(t *testing.T) {
	service, repository, _ := newTestService(t)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Name:     "Ana",
		Password: "hunter42",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "hunter42", created.PasswordHash)

	stored, err := repository.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "different",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

// # Login

func TestService_Login(t *testing.T) {
	service, _, _ := newTestService(t)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	session, err := service.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, created.ID, session.Member.ID)

	// The token must verify and carry the member id claim.
	tokens, err := sec.NewTokenService("test-secret")
	require.NoError(t, err)

	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)

	memberID, ok := claims.MemberID()
	require.True(t, ok)
	assert.Equal(t, created.ID, memberID)
	assert.Equal(t, "ana@example.com", claims[ClaimEmail])
}

func TestService_Login_WrongPassword(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "wrong",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Equal(t, "Invalid credentials", appError.Message)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	// Same generic message as a wrong password to prevent enumeration.
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Equal(t, "Invalid credentials", appError.Message)
}

// # Identity Resolution

func TestService_ResolveIdentity_ReadThrough(t *testing.T) {
	service, _, cache := newTestService(t)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	// First resolve misses the cache and populates it.
	identity, err := service.ResolveIdentity(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, identity.MemberID)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, 1, cache.sets)

	// Second resolve is served from the cache.
	_, err = service.ResolveIdentity(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestService_ResolveIdentity_UnknownMember(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.ResolveIdentity(context.Background(), 999)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestService_TokenExpiryWindow(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	before := time.Now()
	session, err := service.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "hunter42",
	})
	require.NoError(t, err)

	tokens, err := sec.NewTokenService("test-secret")
	require.NoError(t, err)
	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)

	expiry, ok := claims["exp"].(json.Number)
	require.True(t, ok)
	seconds, err := expiry.Int64()
	require.NoError(t, err)

	// exp lands one hour out, give or take test latency.
	assert.InDelta(t, before.Add(time.Hour).Unix(), seconds, 5)
}
