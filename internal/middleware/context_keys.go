package middleware

// ContextKey is a private key type for request-context values.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated account id.
	UserIDCtxKey = ContextKey("user_id")
	// UserEmailCtxKey holds the authenticated account email.
	UserEmailCtxKey = ContextKey("user_email")
	// UserRoleCtxKey holds the authenticated account role.
	UserRoleCtxKey = ContextKey("user_role")
)
