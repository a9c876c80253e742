package api

import (
	"context"
)

type contextKey string

const callerContextKey contextKey = "api_caller"

// Caller identifies the authenticated user making a request. Identity is
// established upstream (API gateway) and relayed via trusted headers.
type Caller struct {
	UserID  string
	IsAdmin bool
}

// CallerFromContext extracts the Caller from context
func CallerFromContext(ctx context.Context) *Caller {
	caller, ok := ctx.Value(callerContextKey).(*Caller)
	if !ok {
		return nil
	}
	return caller
}

// ContextWithCaller adds the Caller to context
func ContextWithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}
