package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the persisted record behind every issued bearer credential. A credential is
// honored only while its session row exists and has not expired, which allows revocation
// before the credential's own expiry.
type Session struct {
	ID            uuid.UUID
	JTI           string     // Credential identifier, unique
	UserID        uuid.UUID
	ApplicationID *uuid.UUID // Nil for first-party sessions
	Rights        *Rights    // Nil for first-party sessions
	OpenIP        string     // IP that created the session
	LastIP        string     // IP of the last authenticated request
	LastLoginAt   time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExpired reports whether the session is past its absolute expiration.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsFirstParty reports whether the session belongs to the platform's own client.
func (s *Session) IsFirstParty() bool {
	return s.ApplicationID == nil
}

// Touch records a successful authentication from ip.
func (s *Session) Touch(ip string, now time.Time) {
	s.LastIP = ip
	s.LastLoginAt = now
	s.UpdatedAt = now
}

// IssueSessionOutput is a freshly issued bearer credential.
type IssueSessionOutput struct {
	Token   string
	Session *Session
}

// SessionView is a session as listed to its user.
type SessionView struct {
	Session *Session
	Current bool
}

// CleanupResult reports the rows removed, or that would be removed, by an expiry sweep.
type CleanupResult struct {
	Sessions        int64
	HandshakeTokens int64
	DryRun          bool
}
