// Package requestcontext provides transport-independent context accessors for
// request-scoped values.
//
// Values are typically set by the caller that accepted the batch (worker, CLI,
// host application) and consumed by services. Keeping this package free of
// net/http dependencies lets services import only what they need.
//
// Usage in services (read values):
//
//	ws := requestcontext.WorkspaceID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithRequestID(ctx, "req-123")
package requestcontext

import (
	"context"
	"time"

	id "orgbook/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	workspaceIDKey struct{}
	actorIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyWorkspaceID = workspaceIDKey{}
	ContextKeyActorID     = actorIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// WorkspaceID retrieves the workspace scope from the context.
// Returns the zero value (nil UUID) if not set.
func WorkspaceID(ctx context.Context) id.WorkspaceID {
	if ws, ok := ctx.Value(ContextKeyWorkspaceID).(id.WorkspaceID); ok {
		return ws
	}
	return id.WorkspaceID{}
}

// WithWorkspaceID injects a workspace scope into the context.
func WithWorkspaceID(ctx context.Context, ws id.WorkspaceID) context.Context {
	return context.WithValue(ctx, ContextKeyWorkspaceID, ws)
}

// ActorID retrieves the contact that triggered the current operation.
// Returns the zero value (nil UUID) if not set.
func ActorID(ctx context.Context) id.ContactID {
	if actor, ok := ctx.Value(ContextKeyActorID).(id.ContactID); ok {
		return actor
	}
	return id.ContactID{}
}

// WithActorID injects the triggering contact into the context.
func WithActorID(ctx context.Context, actor id.ContactID) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actor)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for batch operations that need one consistent timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
