package domain

import (
	"time"

	"github.com/google/uuid"

	userDomain "github.com/questionit/api/internal/user/domain"
)

// OutOfBand is the redirect target selecting the PIN flow.
const OutOfBand = "oob"

// HandshakeToken is the single-use record of a pending application authorization.
// Its states are: created (no owner), approved (owner and validator set), consumed (deleted).
type HandshakeToken struct {
	ID            uuid.UUID
	Token         string // Opaque encrypted bearer string
	ApplicationID uuid.UUID
	RedirectTo    string     // Callback URL or OutOfBand
	ValidatorHash *string    // Set on approval
	OwnerID       *uuid.UUID // Set on approval
	CreatedAt     time.Time
}

// IsExpired reports whether the token is older than window.
func (h *HandshakeToken) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(h.CreatedAt) > window
}

// IsApproved reports whether a user has approved the token.
func (h *HandshakeToken) IsApproved() bool {
	return h.OwnerID != nil
}

// IsOutOfBand reports whether the token uses the PIN flow.
func (h *HandshakeToken) IsOutOfBand() bool {
	return h.RedirectTo == OutOfBand
}

// HandshakePayload is sealed inside the opaque token string.
type HandshakePayload struct {
	CorrelationID string `cbor:"1,keyasint"`
	Rights        Rights `cbor:"2,keyasint"`
}

// RequestHandshakeInput starts a handshake on behalf of an application.
type RequestHandshakeInput struct {
	ApplicationKey string
	RedirectTo     string
	// Rights are the capabilities the application asks for. Absent names inherit
	// the application's default rights; the result never exceeds them.
	Rights map[string]bool
}

// RequestHandshakeOutput carries the opaque token the application forwards to the user.
type RequestHandshakeOutput struct {
	Token string
}

// HandshakeDetails describes a pending handshake to the user asked to approve it.
type HandshakeDetails struct {
	ApplicationName string
	ApplicationURL  string
	CreatedAt       time.Time
	Rights          []string
}

// ApproveHandshakeInput carries exactly one of Token (approve) or Deny (deny).
type ApproveHandshakeInput struct {
	Token string
	Deny  string
}

// ApproveHandshakeOutput is the result of an approval or a denial.
//
// An approved redirect flow sets Validator and URL, an approved out-of-band flow sets PIN.
// A denial sets Denied, plus DeniedURL when the flow has a callback.
type ApproveHandshakeOutput struct {
	Validator string
	URL       string
	PIN       string
	Denied    bool
	DeniedURL string
}

// ExchangeHandshakeInput trades an approved handshake for a session.
type ExchangeHandshakeInput struct {
	ApplicationKey string
	Token          string
	Validator      string
	IP             string
}

// ExchangeHandshakeOutput is the delegated session issued by an exchange.
type ExchangeHandshakeOutput struct {
	Token     string
	ExpiresAt time.Time
	Rights    Rights
	Profile   *userDomain.Profile
}
