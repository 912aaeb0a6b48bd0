// Package mocks provides mock implementations of the auth use cases for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/questionit/api/internal/auth/domain"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// MockAuthenticationUseCase is a mock implementation of AuthenticationUseCase.
type MockAuthenticationUseCase struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method.
func (m *MockAuthenticationUseCase) Authenticate(
	ctx context.Context,
	raw string,
	ip string,
) (*authDomain.AuthContext, error) {
	args := m.Called(ctx, raw, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthContext), args.Error(1)
}

// AuthenticateOrAnonymous mocks the AuthenticateOrAnonymous method.
func (m *MockAuthenticationUseCase) AuthenticateOrAnonymous(
	ctx context.Context,
	raw string,
	ip string,
) (*authDomain.AuthContext, error) {
	args := m.Called(ctx, raw, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthContext), args.Error(1)
}

// MockHandshakeUseCase is a mock implementation of HandshakeUseCase.
type MockHandshakeUseCase struct {
	mock.Mock
}

// RequestToken mocks the RequestToken method.
func (m *MockHandshakeUseCase) RequestToken(
	ctx context.Context,
	input *authDomain.RequestHandshakeInput,
) (*authDomain.RequestHandshakeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RequestHandshakeOutput), args.Error(1)
}

// Details mocks the Details method.
func (m *MockHandshakeUseCase) Details(ctx context.Context, token string) (*authDomain.HandshakeDetails, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.HandshakeDetails), args.Error(1)
}

// Approve mocks the Approve method.
func (m *MockHandshakeUseCase) Approve(
	ctx context.Context,
	user *userDomain.User,
	input *authDomain.ApproveHandshakeInput,
) (*authDomain.ApproveHandshakeOutput, error) {
	args := m.Called(ctx, user, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.ApproveHandshakeOutput), args.Error(1)
}

// Exchange mocks the Exchange method.
func (m *MockHandshakeUseCase) Exchange(
	ctx context.Context,
	input *authDomain.ExchangeHandshakeInput,
) (*authDomain.ExchangeHandshakeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.ExchangeHandshakeOutput), args.Error(1)
}

// MockApplicationUseCase is a mock implementation of ApplicationUseCase.
type MockApplicationUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockApplicationUseCase) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input *authDomain.CreateApplicationInput,
) (*authDomain.Application, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Application), args.Error(1)
}

// Update mocks the Update method.
func (m *MockApplicationUseCase) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	id uuid.UUID,
	input *authDomain.UpdateApplicationInput,
) (*authDomain.Application, error) {
	args := m.Called(ctx, ownerID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Application), args.Error(1)
}

// RegenerateKey mocks the RegenerateKey method.
func (m *MockApplicationUseCase) RegenerateKey(
	ctx context.Context,
	ownerID uuid.UUID,
	id uuid.UUID,
) (*authDomain.Application, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Application), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockApplicationUseCase) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockApplicationUseCase) List(ctx context.Context, ownerID uuid.UUID) ([]*authDomain.Application, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Application), args.Error(1)
}

// ListSubscribed mocks the ListSubscribed method.
func (m *MockApplicationUseCase) ListSubscribed(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Application), args.Error(1)
}

// Unsubscribe mocks the Unsubscribe method.
func (m *MockApplicationUseCase) Unsubscribe(ctx context.Context, userID uuid.UUID, applicationID uuid.UUID) error {
	args := m.Called(ctx, userID, applicationID)
	return args.Error(0)
}

// MockSessionUseCase is a mock implementation of SessionUseCase.
type MockSessionUseCase struct {
	mock.Mock
}

// IssueFirstParty mocks the IssueFirstParty method.
func (m *MockSessionUseCase) IssueFirstParty(
	ctx context.Context,
	userID uuid.UUID,
	ip string,
) (*authDomain.IssueSessionOutput, error) {
	args := m.Called(ctx, userID, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueSessionOutput), args.Error(1)
}

// List mocks the List method.
func (m *MockSessionUseCase) List(
	ctx context.Context,
	auth *authDomain.AuthContext,
) ([]*authDomain.SessionView, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.SessionView), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockSessionUseCase) Revoke(ctx context.Context, auth *authDomain.AuthContext, jti string) error {
	args := m.Called(ctx, auth, jti)
	return args.Error(0)
}

// CleanupExpired mocks the CleanupExpired method.
func (m *MockSessionUseCase) CleanupExpired(
	ctx context.Context,
	grace time.Duration,
	dryRun bool,
) (*authDomain.CleanupResult, error) {
	args := m.Called(ctx, grace, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CleanupResult), args.Error(1)
}
