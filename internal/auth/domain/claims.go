package domain

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the verified content of a bearer credential. It is either FirstPartyClaims
// or ApplicationClaims.
type Claims interface {
	Subject() uuid.UUID
	ID() string
	Expiry() time.Time
	claims()
}

// FirstPartyClaims identify a session of the platform's own client. They imply RightsInternal.
type FirstPartyClaims struct {
	UserID    uuid.UUID
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ApplicationClaims identify a session delegated to a third-party application.
type ApplicationClaims struct {
	UserID         uuid.UUID
	ApplicationID  uuid.UUID
	KeyFingerprint string // Keyed hash of the application key at issuance
	Rights         Rights
	JTI            string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

func (c FirstPartyClaims) Subject() uuid.UUID {
	return c.UserID
}

func (c FirstPartyClaims) ID() string {
	return c.JTI
}

func (c FirstPartyClaims) Expiry() time.Time {
	return c.ExpiresAt
}

func (FirstPartyClaims) claims() {}

func (c ApplicationClaims) Subject() uuid.UUID {
	return c.UserID
}

func (c ApplicationClaims) ID() string {
	return c.JTI
}

func (c ApplicationClaims) Expiry() time.Time {
	return c.ExpiresAt
}

func (ApplicationClaims) claims() {}

// EffectiveRights resolves the rights a credential grants.
func EffectiveRights(c Claims) Rights {
	switch v := c.(type) {
	case ApplicationClaims:
		return v.Rights.Known()
	case FirstPartyClaims:
		return RightsInternal
	default:
		return 0
	}
}
