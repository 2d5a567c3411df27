package server

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const contextKeyRequestID contextKey = "requestID"

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
