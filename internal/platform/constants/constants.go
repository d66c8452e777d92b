// Copyright (c) 2026 Clipflow. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, upload ceilings, and cross-cutting
keys that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Uploads: Size/type limits and session retention for chunked uploads.
  - Security: Access token lifetime.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "clipflow-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Chunk bodies are capped well below what this allows at typical line rates.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 60 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AccessTokenTTL is the lifetime of an issued access token.
	AccessTokenTTL = 60 * time.Minute

	// IdentityCacheTTL is how long a resolved member identity stays in the
	// Redis read-through cache before the next request hits PostgreSQL again.
	IdentityCacheTTL = 5 * time.Minute
)

// # Uploads

const (
	// MaxUploadBytes is the global ceiling for a single video asset.
	MaxUploadBytes int64 = 50 << 20 // 50 MiB

	// UploadChunkBytes is the advisory chunk size returned to clients at
	// session init. The server accepts chunks of any size.
	UploadChunkBytes int64 = 5 << 20 // 5 MiB

	// AcceptedVideoMime is the single media type accepted for assets.
	AcceptedVideoMime = "video/mp4"

	// AcceptedVideoExtension is the single container extension accepted
	// for declared filenames.
	AcceptedVideoExtension = ".mp4"

	// UploadSessionRetention is how long an inactive upload session is kept
	// before the sweeper reclaims its record and temp file.
	UploadSessionRetention = 24 * time.Hour

	// UploadSweepInterval is how often the background sweeper scans for
	// abandoned sessions.
	UploadSweepInterval = 1 * time.Hour
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixIdentity = "auth:identity:"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)
