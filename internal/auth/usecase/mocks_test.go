package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/questionit/api/internal/auth/domain"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// mockTxManager runs the function inline, without a transaction.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

// mockSessionRepository is a mock implementation of SessionRepository for testing.
type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *authDomain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) GetByJTI(ctx context.Context, jti string) (*authDomain.Session, error) {
	args := m.Called(ctx, jti)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

func (m *mockSessionRepository) Touch(ctx context.Context, session *authDomain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authDomain.Session, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Session), args.Error(1)
}

func (m *mockSessionRepository) DeleteByJTI(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

func (m *mockSessionRepository) DeleteByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepository) DeleteByUserAndApplication(
	ctx context.Context,
	userID, applicationID uuid.UUID,
) (int64, error) {
	args := m.Called(ctx, userID, applicationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// mockApplicationRepository is a mock implementation of ApplicationRepository for testing.
type mockApplicationRepository struct {
	mock.Mock
}

func (m *mockApplicationRepository) Create(ctx context.Context, app *authDomain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepository) Update(ctx context.Context, app *authDomain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) GetByKey(ctx context.Context, key string) (*authDomain.Application, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*authDomain.Application, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) ListSubscribed(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authDomain.Application, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *mockApplicationRepository) NameExists(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	args := m.Called(ctx, ownerID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockHandshakeTokenRepository is a mock implementation of HandshakeTokenRepository for testing.
type mockHandshakeTokenRepository struct {
	mock.Mock
}

func (m *mockHandshakeTokenRepository) Create(ctx context.Context, token *authDomain.HandshakeToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockHandshakeTokenRepository) GetByToken(
	ctx context.Context,
	token string,
) (*authDomain.HandshakeToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.HandshakeToken), args.Error(1)
}

func (m *mockHandshakeTokenRepository) GetByTokenForUpdate(
	ctx context.Context,
	token string,
) (*authDomain.HandshakeToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.HandshakeToken), args.Error(1)
}

func (m *mockHandshakeTokenRepository) Approve(
	ctx context.Context,
	id uuid.UUID,
	ownerID uuid.UUID,
	validatorHash string,
) error {
	args := m.Called(ctx, id, ownerID, validatorHash)
	return args.Error(0)
}

func (m *mockHandshakeTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockHandshakeTokenRepository) DeleteByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockHandshakeTokenRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockHandshakeTokenRepository) CountCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetRelationships(ctx context.Context, id uuid.UUID) (*userDomain.Relationships, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.Relationships), args.Error(1)
}

// mockBanChecker is a mock implementation of BanChecker for testing.
type mockBanChecker struct {
	mock.Mock
}

func (m *mockBanChecker) IsAccountBanned(accountID string) bool {
	args := m.Called(accountID)
	return args.Bool(0)
}

func (m *mockBanChecker) IsTwitterIDBanned(twitterID string) bool {
	args := m.Called(twitterID)
	return args.Bool(0)
}

// mockValidatorService is a mock implementation of ValidatorService for testing.
type mockValidatorService struct {
	mock.Mock
}

func (m *mockValidatorService) GenerateValidator() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockValidatorService) GeneratePIN() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockValidatorService) CompareValidator(plain string, hash string) bool {
	args := m.Called(plain, hash)
	return args.Bool(0)
}

// mockKeyService is a mock implementation of KeyService for testing.
type mockKeyService struct {
	mock.Mock
}

func (m *mockKeyService) GenerateKey() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockKeyService) Fingerprint(key string) string {
	args := m.Called(key)
	return args.String(0)
}
