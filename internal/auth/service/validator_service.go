package service

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"strconv"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/questionit/api/internal/errors"
)

const (
	pinMin   = 100000
	pinRange = 900000
)

// validatorService implements ValidatorService using Argon2id for hashing.
type validatorService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateValidator creates a base64url validator from 16 random bytes.
func (s *validatorService) GenerateValidator() (string, string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate validator")
	}
	return s.withHash(base64.RawURLEncoding.EncodeToString(randomBytes))
}

// GeneratePIN creates a PIN uniformly distributed over 100000-999999.
func (s *validatorService) GeneratePIN() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinRange))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate pin")
	}
	return s.withHash(strconv.FormatInt(n.Int64()+pinMin, 10))
}

func (s *validatorService) withHash(plain string) (string, string, error) {
	hash, err := s.hasher.Hash([]byte(plain))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash validator")
	}
	return plain, hash, nil
}

// CompareValidator performs a constant-time comparison between a validator and its hash.
func (s *validatorService) CompareValidator(plain string, hash string) bool {
	ok, err := s.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}

// NewValidatorService creates a ValidatorService using the Moderate Argon2id policy.
func NewValidatorService() ValidatorService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		panic(err)
	}

	return &validatorService{
		hasher: hasher,
	}
}
