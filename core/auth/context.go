package auth

import (
	"context"

	"kendala-hub/core/store"
)

type contextKey string

// SessionContextKey carries the authenticated *store.SessionRecord through
// request contexts.
const SessionContextKey contextKey = "kendala-session"

// SessionFromContext returns the session attached by the middleware, or nil.
func SessionFromContext(ctx context.Context) *store.SessionRecord {
	val := ctx.Value(SessionContextKey)
	if val == nil {
		return nil
	}
	rec, _ := val.(*store.SessionRecord)
	return rec
}
