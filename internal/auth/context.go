package auth

import "context"

type ctxKey string

const viewerKey ctxKey = "viewerID"

// WithViewerID stores the authenticated user's identifier on the context.
func WithViewerID(ctx context.Context, userID string) context.Context {
	if ctx == nil || userID == "" {
		return ctx
	}
	return context.WithValue(ctx, viewerKey, userID)
}

// ViewerID returns the authenticated user's identifier, or "" for anonymous
// requests.
func ViewerID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(viewerKey).(string); ok {
		return id
	}
	return ""
}
