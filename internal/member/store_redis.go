// Copyright (c) 2026 Clipflow. All rights reserved.

package member

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/clipflow/clipflow/internal/platform/constants"
	"github.com/clipflow/clipflow/internal/platform/sec"
)

// RedisIdentityCache implements IdentityCache using Redis.
//
// Entries carry a short TTL so profile changes propagate within
// [constants.IdentityCacheTTL] without explicit invalidation on every path.
type RedisIdentityCache struct {
	client *redis.Client
}

// NewRedisIdentityCache creates a new Redis-backed IdentityCache.
func NewRedisIdentityCache(client *redis.Client) *RedisIdentityCache {
	return &RedisIdentityCache{client: client}
}

func identityKey(memberID int64) string {
	return fmt.Sprintf("%s%d", constants.RedisPrefixIdentity, memberID)
}

/*
Get retrieves a cached identity for the given member ID.

Description: A cache miss returns (nil, nil). Corrupt entries are treated
as a miss after removal so the caller falls through to the primary store.

Parameters:
  - context: context.Context
  - memberID: int64

Returns:
  - *sec.Identity: Cached identity or nil on miss
  - error: Connectivity errors only
*/
func (cache *RedisIdentityCache) Get(context context.Context, memberID int64) (*sec.Identity, error) {
	payload, err := cache.client.Get(context, identityKey(memberID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_identity_cache_get_failed: %w", err)
	}

	identity := &sec.Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		_ = cache.client.Del(context, identityKey(memberID)).Err()
		return nil, nil
	}

	return identity, nil
}

/*
Set stores an identity with the standard cache TTL.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - error: Marshalling or connectivity errors
*/
func (cache *RedisIdentityCache) Set(context context.Context, identity *sec.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("redis_identity_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, identityKey(identity.MemberID), payload, constants.IdentityCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_set_failed: %w", err)
	}

	return nil
}

/*
Invalidate removes a cached identity.

Parameters:
  - context: context.Context
  - memberID: int64

Returns:
  - error: Connectivity errors
*/
func (cache *RedisIdentityCache) Invalidate(context context.Context, memberID int64) error {
	if err := cache.client.Del(context, identityKey(memberID)).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_invalidate_failed: %w", err)
	}

	return nil
}
