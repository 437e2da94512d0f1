package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the subset of bearer token claims the server reads
type UserClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"` // "authenticated" or "anon" when issued by Supabase
	IsAnonymous          bool   `json:"is_anonymous,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
// It also selects the user's folder namespace.
func (c *UserClaims) GetUserID() string {
	return c.Subject
}
