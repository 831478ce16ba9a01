package identity

// Request context keys set by the auth middleware.
const (
	ContextKey     = "identity"
	RoleContextKey = "user_role"
)

// Getter is satisfied by *gin.Context.
type Getter interface {
	Get(key string) (value any, exists bool)
}

// FromContext returns the authenticated identity stored on the request.
func FromContext(c Getter) (Identity, bool) {
	value, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	id, ok := value.(Identity)
	return id, ok
}

// RoleFromContext returns the requester's role, empty when unknown.
func RoleFromContext(c Getter) string {
	value, exists := c.Get(RoleContextKey)
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}
