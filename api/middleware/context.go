package middleware

import "context"

type contextKey string

const (
	ctxAdminUsername contextKey = "admin_username"
	ctxRequestID     contextKey = "request_id"
)

// AdminFromContext returns the authenticated back-office username.
func AdminFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAdminUsername)
}

func WithAdmin(ctx context.Context, username string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAdminUsername, username)
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRequestID)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRequestID, id)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
