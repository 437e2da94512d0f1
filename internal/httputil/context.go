package httputil

import (
	"context"
	"net/http"
)

type userIDKey struct{}

// WithUserID returns r with the authenticated user ID attached
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

// ContextWithUserID attaches userID to ctx
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID returns the user ID set by the auth middleware, or ""
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey{}).(string)
	return userID
}
