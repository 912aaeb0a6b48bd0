package service

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"

	authDomain "github.com/questionit/api/internal/auth/domain"
)

// payloadEncMode encodes handshake payloads with Core Deterministic Encoding.
var payloadEncMode cbor.EncMode

func init() {
	var err error
	payloadEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("service: CBOR encoder initialization failed: " + err.Error())
	}
}

// xchachaHandshakeCipher seals payloads with XChaCha20-Poly1305. The token is
// base64url(nonce || ciphertext) and the application ID is the additional data.
type xchachaHandshakeCipher struct {
	aead cipher.AEAD
}

// NewHandshakeCipher creates a HandshakeCipher from a 32-byte key.
func NewHandshakeCipher(key []byte) (HandshakeCipher, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305 cipher: %w", err)
	}
	return &xchachaHandshakeCipher{aead: aead}, nil
}

// Seal encodes and encrypts payload for applicationID.
func (c *xchachaHandshakeCipher) Seal(applicationID uuid.UUID, payload authDomain.HandshakePayload) (string, error) {
	plaintext, err := payloadEncMode.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode handshake payload: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, applicationID[:])
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts token and decodes its payload. Tokens issued for another application,
// tampered with or malformed fail with authDomain.ErrInvalidExpiredToken.
func (c *xchachaHandshakeCipher) Open(applicationID uuid.UUID, token string) (authDomain.HandshakePayload, error) {
	var payload authDomain.HandshakePayload

	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(sealed) < c.aead.NonceSize()+c.aead.Overhead() {
		return payload, authDomain.ErrInvalidExpiredToken
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, applicationID[:])
	if err != nil {
		return payload, authDomain.ErrInvalidExpiredToken
	}

	if err := cbor.Unmarshal(plaintext, &payload); err != nil {
		return payload, authDomain.ErrInvalidExpiredToken
	}
	return payload, nil
}
