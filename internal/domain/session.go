package domain

import "time"

// Session represents an authenticated session backed by a refresh token.
// The refresh token itself is never stored; only its SHA-256 hash is.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ClientName       string    `json:"client_name,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	RevokedAt        time.Time `json:"revoked_at,omitempty"`
}

// IsValid reports whether the session can still be used to refresh tokens.
func (s *Session) IsValid(now time.Time) bool {
	return s.RevokedAt.IsZero() && now.Before(s.ExpiresAt)
}
