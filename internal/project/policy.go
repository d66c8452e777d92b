// Copyright (c) 2026 Clipflow. All rights reserved.

package project

import (
	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/sec"
)

// # Access Policy

// Decision is the outcome of a single access predicate.
type Decision int

const (
	// DecisionSkip defers to the next predicate in the chain.
	DecisionSkip Decision = iota
	// DecisionAllow grants access and stops evaluation.
	DecisionAllow
	// DecisionDeny refuses access and stops evaluation.
	DecisionDeny
)

// Predicate inspects the caller's identity against the resource owner and
// votes on access. Predicates must not have side effects.
type Predicate func(identity *sec.Identity, ownerID int64) Decision

// Policy evaluates an ordered predicate chain with short-circuit semantics:
// the first Allow or Deny wins, Skip falls through. A chain that only skips
// denies by default.
type Policy struct {
	predicates []Predicate
}

// NewPolicy builds a policy from the given ordered predicates.
func NewPolicy(predicates ...Predicate) *Policy {
	return &Policy{predicates: predicates}
}

/*
Authorize evaluates the chain for the given caller and resource owner.

Description: A denied ownership check is reported as NotFound rather than
Forbidden so the API never distinguishes "someone else's project" from
"no such project".

Parameters:
  - identity: *sec.Identity (nil when anonymous)
  - ownerID: int64 (resource owner)

Returns:
  - error: nil on allow; apperr.Unauthorized for anonymous callers,
    apperr.NotFound otherwise
*/
func (policy *Policy) Authorize(identity *sec.Identity, ownerID int64) error {
	for _, predicate := range policy.predicates {
		switch predicate(identity, ownerID) {
		case DecisionAllow:
			return nil
		case DecisionDeny:
			return policy.denial(identity)
		}
	}

	// Nothing voted: fail closed.
	return policy.denial(identity)
}

func (policy *Policy) denial(identity *sec.Identity) error {
	if identity == nil {
		return apperr.Unauthorized("Authentication required")
	}
	return apperr.NotFound("Project")
}

// # Standard Predicates

// Authenticated denies anonymous callers and defers otherwise.
func Authenticated(identity *sec.Identity, _ int64) Decision {
	if identity == nil {
		return DecisionDeny
	}
	return DecisionSkip
}

// Owner allows the resource owner and denies everyone else.
func Owner(identity *sec.Identity, ownerID int64) Decision {
	if identity != nil && identity.MemberID == ownerID {
		return DecisionAllow
	}
	return DecisionDeny
}

// OwnerPolicy is the standard chain for project-bound resources:
// the caller must be authenticated and must own the project.
func OwnerPolicy() *Policy {
	return NewPolicy(Authenticated, Owner)
}
