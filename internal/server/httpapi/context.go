package httpapi

import (
	"context"
	"net/http"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the identity placed by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// UserIDFromRequest adapts UserIDFromContext to ws.IdentityFunc.
func UserIDFromRequest(r *http.Request) (string, bool) {
	return UserIDFromContext(r.Context())
}
