package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// CtxSessionUID is the gin context key holding the authenticated
	// session's uid, empty for anonymous visitors.
	CtxSessionUID = "session_uid"
)

type sessionUIDKey struct{}

// SessionUID extracts the session uid from the Gin context.
// This is set by SessionMiddleware.
func SessionUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxSessionUID))
}

// WithSessionUID stores the uid in a standard context so services can
// read it without a gin dependency.
func WithSessionUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, sessionUIDKey{}, uid)
}

// SessionUIDFromContext returns the uid stored by WithSessionUID, or "".
func SessionUIDFromContext(ctx context.Context) string {
	if uid, ok := ctx.Value(sessionUIDKey{}).(string); ok {
		return uid
	}
	return ""
}
