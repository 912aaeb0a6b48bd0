package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	apperrors "github.com/questionit/api/internal/errors"
)

// credentialClaims is the wire payload: {userId, appId?, appKey?, rights?, jti, iat, exp}.
type credentialClaims struct {
	UserID string `json:"userId"`
	AppID  string `json:"appId,omitempty"`
	AppKey string `json:"appKey,omitempty"`
	Rights *int64 `json:"rights,omitempty"`
	jwt.RegisteredClaims
}

type jwtSigner struct {
	key    []byte
	parser *jwt.Parser
}

// NewJWTSigner creates a CredentialSigner producing HS256 JWTs.
func NewJWTSigner(key []byte) CredentialSigner {
	return newJWTSigner(key, time.Now)
}

func newJWTSigner(key []byte, now func() time.Time) *jwtSigner {
	return &jwtSigner{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(now),
		),
	}
}

// Sign produces an HS256 credential for first-party or application claims.
func (s *jwtSigner) Sign(claims authDomain.Claims) (string, error) {
	var payload credentialClaims

	switch c := claims.(type) {
	case authDomain.FirstPartyClaims:
		payload = credentialClaims{
			UserID:           c.UserID.String(),
			RegisteredClaims: registeredClaims(c.JTI, c.IssuedAt, c.ExpiresAt),
		}
	case authDomain.ApplicationClaims:
		rights := int64(c.Rights)
		payload = credentialClaims{
			UserID:           c.UserID.String(),
			AppID:            c.ApplicationID.String(),
			AppKey:           c.KeyFingerprint,
			Rights:           &rights,
			RegisteredClaims: registeredClaims(c.JTI, c.IssuedAt, c.ExpiresAt),
		}
	default:
		return "", apperrors.New("unsupported claims type")
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.key)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign credential")
	}
	return signed, nil
}

// Verify parses raw and rebuilds the claims variant it carries.
func (s *jwtSigner) Verify(raw string) (authDomain.Claims, error) {
	var payload credentialClaims

	_, err := s.parser.ParseWithClaims(raw, &payload, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil || payload.ID == "" || payload.IssuedAt == nil {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	issuedAt := payload.IssuedAt.Time
	expiresAt := payload.ExpiresAt.Time

	if payload.AppID == "" {
		return authDomain.FirstPartyClaims{
			UserID:    userID,
			JTI:       payload.ID,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		}, nil
	}

	appID, err := uuid.Parse(payload.AppID)
	if err != nil || payload.Rights == nil || payload.AppKey == "" {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	return authDomain.ApplicationClaims{
		UserID:         userID,
		ApplicationID:  appID,
		KeyFingerprint: payload.AppKey,
		Rights:         authDomain.Rights(*payload.Rights),
		JTI:            payload.ID,
		IssuedAt:       issuedAt,
		ExpiresAt:      expiresAt,
	}, nil
}

func registeredClaims(jti string, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}
