package shared

import "context"

type contextKey string

const sessionContextKey contextKey = "mandap.session"

// ContextWithSession stores the session in the request context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext retrieves the session from the context, or nil.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey).(*Session)
	return sess
}

// UserIDFromContext returns the authenticated user ID, or 0 when anonymous.
func UserIDFromContext(ctx context.Context) int64 {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return 0
}
