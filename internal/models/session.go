package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the decoded session artifact. The authority set is
// computed once at issuance and trusted on subsequent reads; it is only
// recomputed when the session is explicitly reissued.
type SessionClaims struct {
	Authority []string `json:"authority"`
	jwt.RegisteredClaims
}

// HasAuthority reports whether the session carries any of the given tags.
// An empty required set matches every authenticated session.
func (c *SessionClaims) HasAuthority(required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range c.Authority {
			if want == have {
				return true
			}
		}
	}
	return false
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Authority    []string  `json:"authority"`
	IssuedAt     time.Time `json:"issued_at"`
}
