package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// SecretUnwrapper resolves the server secret, optionally stored encrypted by a KMS key.
type SecretUnwrapper interface {
	// Unwrap returns secret as-is when keyURI is empty. Otherwise secret is a base64
	// ciphertext decrypted with the keeper at keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	Unwrap(ctx context.Context, keyURI, secret string) ([]byte, error)
}

type kmsSecretUnwrapper struct{}

// NewSecretUnwrapper creates a SecretUnwrapper backed by gocloud.dev/secrets.
func NewSecretUnwrapper() SecretUnwrapper {
	return &kmsSecretUnwrapper{}
}

func (k *kmsSecretUnwrapper) Unwrap(ctx context.Context, keyURI, secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("server secret is not configured")
	}
	if keyURI == "" {
		return []byte(secret), nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wrapped secret: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap secret: %w", err)
	}
	return plaintext, nil
}
