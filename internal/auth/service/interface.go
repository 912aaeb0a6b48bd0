// Package service provides the cryptographic services behind sessions and the application
// handshake: credential signing, handshake token sealing, application key handling and
// validator hashing.
package service

import (
	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
)

// CredentialSigner signs and verifies bearer credentials.
type CredentialSigner interface {
	// Sign produces a bearer credential for the given claims.
	Sign(claims authDomain.Claims) (string, error)

	// Verify checks the signature and expiry of raw and returns its claims.
	// Every failure is reported as authDomain.ErrInvalidExpiredToken.
	Verify(raw string) (authDomain.Claims, error)
}

// HandshakeCipher seals the payload of handshake tokens into opaque strings.
// Tokens are bound to the application they were issued for.
type HandshakeCipher interface {
	Seal(applicationID uuid.UUID, payload authDomain.HandshakePayload) (string, error)
	Open(applicationID uuid.UUID, token string) (authDomain.HandshakePayload, error)
}

// KeyService generates application keys and fingerprints them for embedding in credentials.
type KeyService interface {
	// GenerateKey creates a new random application key.
	GenerateKey() (string, error)

	// Fingerprint returns a keyed hash of an application key. Credentials carry the
	// fingerprint so the key itself never leaves the server inside a token.
	Fingerprint(key string) string
}

// ValidatorService generates handshake validators and stores them hashed.
type ValidatorService interface {
	// GenerateValidator creates an opaque validator for the redirect flow.
	GenerateValidator() (plain string, hash string, err error)

	// GeneratePIN creates a 6 digit validator for the out-of-band flow.
	GeneratePIN() (plain string, hash string, err error)

	// CompareValidator reports whether plain matches hash.
	CompareValidator(plain string, hash string) bool
}
