// Copyright (c) 2026 Clipflow. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/ctxutil"
	"github.com/clipflow/clipflow/internal/platform/respond"
	"github.com/clipflow/clipflow/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenString string) (sec.Claims, error)
}

// IdentityResolver resolves a member id from token claims to a live identity.
//
// Implemented by the member service (Redis read-through over PostgreSQL).
// Resolution failure means the token references a member that no longer
// exists, which must be treated as an invalid credential.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, memberID int64) (*sec.Identity, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # Flow
//
//  1. No Authorization header, or a header that is not 'Bearer <token>':
//     the request proceeds as anonymous. A malformed scheme is treated the
//     same as an absent credential — public endpoints may legitimately
//     receive either.
//  2. A bearer credential is present: verify it via [TokenVerifier] and
//     resolve the member id via [IdentityResolver]. Any failure — malformed
//     token, bad signature, expiry, unknown member — aborts with a single
//     generic 401. The response never reveals WHICH check failed, so the
//     signature path cannot be used as an oracle.
//  3. On success, the [*sec.Identity] is injected into the request context
//     for downstream authorization checks.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			token, ok := bearerToken(request)
			if !ok {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			memberID, ok := claims.MemberID()
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 3. Member Resolution ──────────────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), memberID)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// bearerToken extracts the credential from a 'Bearer <token>' header.
// The second return value is false when no usable credential is present.
func bearerToken(request *http.Request) (string, bool) {
	authHeader := request.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	return parts[1], true
}
