package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/zeebo/blake3"

	apperrors "github.com/questionit/api/internal/errors"
)

// keyService generates 16-byte application keys and fingerprints them with keyed BLAKE3.
type keyService struct {
	fingerprintKey []byte
}

// GenerateKey creates a new base64url application key from 16 random bytes.
func (k *keyService) GenerateKey() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate application key")
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// Fingerprint returns the base64url keyed BLAKE3 hash of key.
func (k *keyService) Fingerprint(key string) string {
	hasher, err := blake3.NewKeyed(k.fingerprintKey)
	if err != nil {
		// Only a wrong key length fails, NewKeyService rules that out.
		panic("service: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write([]byte(key))
	return base64.RawURLEncoding.EncodeToString(hasher.Sum(nil))
}

// NewKeyService creates a KeyService. The fingerprint key must be 32 bytes.
func NewKeyService(fingerprintKey []byte) (KeyService, error) {
	if len(fingerprintKey) != 32 {
		return nil, apperrors.New("fingerprint key must be 32 bytes")
	}
	return &keyService{fingerprintKey: fingerprintKey}, nil
}
