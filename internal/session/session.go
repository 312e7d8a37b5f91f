// Package session resolves who a caller is and what role they hold. Both
// resolvers swallow failures: a caller always gets an answer it can act on.
package session

import (
	"context"
	"time"
)

// Identity is an authenticated principal.
type Identity struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
}

// Session is the access credential issued for an Identity.
type Session struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// IdentityProvider is the external authentication service.
type IdentityProvider interface {
	GetUser(ctx context.Context, token string) (*Identity, *Session, error)
}

// Result is what Resolve reports. Identity and Session are both set or both
// nil.
type Result struct {
	Identity *Identity
	Session  *Session
}

func (r Result) Authenticated() bool {
	return r.Identity != nil && r.Session != nil
}
