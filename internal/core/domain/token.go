package domain

import "time"

// TokenChannel identifies the client surface a token was issued for. Web
// tokens carry an absolute expiry; mobile tokens never time-expire and die
// only by explicit revocation.
type TokenChannel string

const (
	ChannelWeb    TokenChannel = "web"
	ChannelMobile TokenChannel = "mobile"
)

// AuthToken is a ledger entry for an issued credential. Token holds the
// opaque string handed to the client (the JWT id, not the JWT itself).
type AuthToken struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Token     string       `json:"-"`
	Channel   TokenChannel `json:"channel"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	RevokedAt *time.Time   `json:"revoked_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Active reports whether the token is usable at the given instant:
// not revoked, and either without expiry or not yet expired.
func (t *AuthToken) Active(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	if t.ExpiresAt != nil && !now.Before(*t.ExpiresAt) {
		return false
	}
	return true
}

// PasswordReset is a single-use recovery token. Consumption is recorded via
// UsedAt rather than deletion so replays are distinguishable from unknowns.
type PasswordReset struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the reset token can still be redeemed.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
