// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmctx carries board- and task-scoped identity through a
// context.Context. It attaches identifiers only; it does not derive or
// cancel a context when a board is dissolved or a task ends.
// Grounded on the teacher's own context-value helper (typed IDs
// attached to context.Context with a private key type to avoid
// collisions), generalized from chain/subnet/node identity to
// task/board/agent identity.
package swarmctx

import (
	"context"

	"github.com/luxfi/ids"
)

// Scope carries the identifiers a deliberation/vote/execution
// operation is running on behalf of.
type Scope struct {
	TaskID  ids.ID
	BoardID ids.ID
	Self    ids.ID
}

type scopeKey struct{}

// WithScope attaches s to ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the Scope attached to ctx, if any.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}

// MustFromContext panics if ctx carries no Scope. Used at entry points
// where a missing scope is a programming error, not a recoverable one.
func MustFromContext(ctx context.Context) Scope {
	s, ok := FromContext(ctx)
	if !ok {
		panic("swarmctx: scope missing from context")
	}
	return s
}
