package constants

// ContextKey is the type used for all context values set by this service.
type ContextKey string

const (
	CtxKeyRequestID ContextKey = "request_id"
	CtxKeyUserID    ContextKey = "user_id"
	CtxKeyUserEmail ContextKey = "user_email"
	CtxKeyClientIP  ContextKey = "client_ip"
	CtxKeyUserAgent ContextKey = "user_agent"
	CtxKeyStartTime ContextKey = "start_time"
	CtxKeyModule    ContextKey = "module"
	CtxKeyFunction  ContextKey = "function"
)

// Gin context keys set by the authentication middleware.
const (
	GinKeyCurrentUser = "current_user"
	GinKeyUserID      = "user_id"
	GinKeyUserEmail   = "email"
)
