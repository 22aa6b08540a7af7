package ctxutil

import (
	"context"
	"net/http"

	"github.com/arclyte/accounts/internal/constants"
	"github.com/google/uuid"
)

// Re-export ContextKey type
type ContextKey = constants.ContextKey

// Re-export context keys
const (
	RequestIDKey = constants.CtxKeyRequestID
	UserIDKey    = constants.CtxKeyUserID
	ClientIPKey  = constants.CtxKeyClientIP
	UserAgentKey = constants.CtxKeyUserAgent
	ModuleKey    = constants.CtxKeyModule
	FunctionKey  = constants.CtxKeyFunction
)

// NewContextWithRequest seeds a context with request metadata plus the
// module/function pair used by the context-aware logger.
func NewContextWithRequest(ctx context.Context, r *http.Request, module, function string) context.Context {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, ClientIPKey, r.RemoteAddr)
	ctx = context.WithValue(ctx, UserAgentKey, r.UserAgent())
	ctx = context.WithValue(ctx, ModuleKey, module)
	ctx = context.WithValue(ctx, FunctionKey, function)
	return ctx
}

// WithUserID adds user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithScope replaces the module/function pair on the context.
func WithScope(ctx context.Context, module, function string) context.Context {
	ctx = context.WithValue(ctx, ModuleKey, module)
	return context.WithValue(ctx, FunctionKey, function)
}

// Getter functions
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func GetUserID(ctx context.Context) string {
	return stringValue(ctx, UserIDKey)
}

func GetClientIP(ctx context.Context) string {
	return stringValue(ctx, ClientIPKey)
}

func GetUserAgent(ctx context.Context) string {
	return stringValue(ctx, UserAgentKey)
}

func GetModule(ctx context.Context) string {
	return stringValue(ctx, ModuleKey)
}

func GetFunction(ctx context.Context) string {
	return stringValue(ctx, FunctionKey)
}

func stringValue(ctx context.Context, key ContextKey) string {
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}
