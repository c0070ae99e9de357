// Package handlers implements the HTTP endpoints of the local API.
package handlers

import "context"

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID attaches an authenticated user ID to a request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user ID set by the auth middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
