package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/questionit/api/internal/errors"
)

// HKDF info labels, versioned so a scheme change never reuses a subkey.
const (
	signingKeyInfo     = "questionit-credential-signing-v1"
	handshakeKeyInfo   = "questionit-handshake-sealing-v1"
	fingerprintKeyInfo = "questionit-app-key-fingerprint-v1"
)

// Keys holds the subkeys derived from the server secret.
type Keys struct {
	Signing     []byte
	Handshake   []byte
	Fingerprint []byte
}

// DeriveKeys derives one 32-byte subkey per purpose from the server secret with HKDF-SHA256.
func DeriveKeys(secret []byte) (*Keys, error) {
	if len(secret) == 0 {
		return nil, apperrors.New("server secret is empty")
	}

	signing, err := deriveKey(secret, signingKeyInfo)
	if err != nil {
		return nil, err
	}
	handshake, err := deriveKey(secret, handshakeKeyInfo)
	if err != nil {
		return nil, err
	}
	fingerprint, err := deriveKey(secret, fingerprintKeyInfo)
	if err != nil {
		return nil, err
	}

	return &Keys{Signing: signing, Handshake: handshake, Fingerprint: fingerprint}, nil
}

func deriveKey(secret []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))

	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
