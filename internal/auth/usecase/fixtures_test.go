package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	authService "github.com/questionit/api/internal/auth/service"
)

// testCrypto bundles real credential and handshake services keyed from a fixed secret.
type testCrypto struct {
	signer     authService.CredentialSigner
	cipher     authService.HandshakeCipher
	keyService authService.KeyService
}

func newTestCrypto(t *testing.T) *testCrypto {
	t.Helper()

	keys, err := authService.DeriveKeys([]byte("usecase-test-server-secret"))
	require.NoError(t, err)

	cipher, err := authService.NewHandshakeCipher(keys.Handshake)
	require.NoError(t, err)

	keyService, err := authService.NewKeyService(keys.Fingerprint)
	require.NoError(t, err)

	return &testCrypto{
		signer:     authService.NewJWTSigner(keys.Signing),
		cipher:     cipher,
		keyService: keyService,
	}
}
