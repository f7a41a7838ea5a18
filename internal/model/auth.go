package model

// AuthContext carries the identity resolved from a validated session
// token. It is injected into the request context by the auth middleware.
type AuthContext struct {
	UserID      int64
	IsOrganiser bool
	TokenID     string // jti, used as the revocation key on logout
}
