// Package auth provides JWT-based authentication for brandlens-engine.
// It validates bearer tokens issued by the identity provider using JWKS
// endpoints. Authentication is optional on most routes: anonymous visitors
// are first-class and are tracked by session id alone.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims structure from the identity provider.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.)
// and adds the profile claims used to provision accounts.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`   // User email address
	Name    string `json:"name,omitempty"`    // Display name
	Picture string `json:"picture,omitempty"` // Avatar URL
}
