package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "backoffice context key " + string(c)
}

const (
	// RequestIDKey carries the request id assigned by the HTTP middleware.
	RequestIDKey = contextKey("requestID")
	// UserEmailKey carries the email of the logged-in operator.
	UserEmailKey = contextKey("userEmail")
	// UserRoleKey carries the role of the logged-in operator.
	UserRoleKey = contextKey("userRole")
	// EntityKey carries the entity name a request operates on.
	EntityKey = contextKey("entity")
	// LanguageKey carries the resolved display language.
	LanguageKey = contextKey("language")
	// ComponentKey carries the component name for logging.
	ComponentKey = contextKey("component")
)
