package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authHTTP "github.com/questionit/api/internal/auth/http"
	"github.com/questionit/api/internal/httputil"
	"github.com/questionit/api/internal/user/domain"
	"github.com/questionit/api/internal/user/http/dto"
)

// MockUseCase is a mock implementation of usecase.UseCase
type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUseCase) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUseCase) Profile(
	ctx context.Context,
	user *domain.User,
	withRelationships bool,
) (*domain.Profile, error) {
	args := m.Called(ctx, user, withRelationships)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockUseCase) UpdateBlockedWords(
	ctx context.Context,
	auth *authDomain.AuthContext,
	words []string,
) (*domain.User, error) {
	args := m.Called(ctx, auth, words)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUseCase) UpdateSettings(
	ctx context.Context,
	auth *authDomain.AuthContext,
	input *domain.UpdateSettingsInput,
) (*domain.User, error) {
	args := m.Called(ctx, auth, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newUserRouter(auth *authDomain.AuthContext) (*MockUseCase, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	useCase := &MockUseCase{}
	handler := NewUserHandler(useCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if auth != nil {
			c.Request = c.Request.WithContext(authHTTP.WithAuth(c.Request.Context(), auth))
		}
		c.Next()
	})
	router.GET("/v1/users/me", handler.MeHandler)
	router.GET("/v1/users/me/blocked-words", handler.GetBlockedWordsHandler)
	router.PUT("/v1/users/me/blocked-words", handler.UpdateBlockedWordsHandler)
	router.PUT("/v1/users/me/settings", handler.UpdateSettingsHandler)
	return useCase, router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Me(t *testing.T) {
	user := &domain.User{ID: uuid.Must(uuid.NewV7()), Slug: "alice", Name: "Alice", SafeMode: true}

	t.Run("WithRelationships", func(t *testing.T) {
		auth := &authDomain.AuthContext{User: user, Rights: authDomain.RightsAll}
		useCase, router := newUserRouter(auth)
		useCase.On("Profile", mock.Anything, user, true).Return(&domain.Profile{
			User:          user,
			Relationships: &domain.Relationships{Followers: 3, Following: 1},
		}, nil)

		w := serve(router, http.MethodGet, "/v1/users/me", "")

		require.Equal(t, http.StatusOK, w.Code)
		var body dto.MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "alice", body.Slug)
		require.NotNil(t, body.Relationships)
		assert.Equal(t, int64(3), body.Relationships.Followers)
		assert.True(t, body.Settings.SafeMode)
		assert.Equal(t, []string{}, body.Settings.BlockedWords)
	})

	t.Run("WithoutReadRelationship", func(t *testing.T) {
		auth := &authDomain.AuthContext{User: user, Rights: authDomain.SendQuestion}
		useCase, router := newUserRouter(auth)
		useCase.On("Profile", mock.Anything, user, false).Return(&domain.Profile{User: user}, nil)

		w := serve(router, http.MethodGet, "/v1/users/me", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "relationships")
		useCase.AssertExpectations(t)
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, router := newUserRouter(authDomain.Anonymous())

		w := serve(router, http.MethodGet, "/v1/users/me", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_BlockedWords(t *testing.T) {
	user := &domain.User{ID: uuid.Must(uuid.NewV7()), BlockedWords: []string{"spam"}}
	auth := &authDomain.AuthContext{User: user, Rights: authDomain.RightsAll}

	t.Run("Get", func(t *testing.T) {
		_, router := newUserRouter(auth)

		w := serve(router, http.MethodGet, "/v1/users/me/blocked-words", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"words":["spam"]}`, w.Body.String())
	})

	t.Run("Update", func(t *testing.T) {
		useCase, router := newUserRouter(auth)
		updated := *user
		updated.BlockedWords = []string{"foo", "bar"}
		useCase.On("UpdateBlockedWords", mock.Anything, auth, []string{"foo", "bar"}).Return(&updated, nil)

		w := serve(router, http.MethodPut, "/v1/users/me/blocked-words", `{"words":["foo","bar"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"words":["foo","bar"]}`, w.Body.String())
	})

	t.Run("MissingWords", func(t *testing.T) {
		useCase, router := newUserRouter(auth)

		w := serve(router, http.MethodPut, "/v1/users/me/blocked-words", `{}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "UpdateBlockedWords", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingRight", func(t *testing.T) {
		useCase, router := newUserRouter(auth)
		useCase.On("UpdateBlockedWords", mock.Anything, auth, []string{"foo"}).
			Return(nil, authDomain.ErrInvalidTokenRights)

		w := serve(router, http.MethodPut, "/v1/users/me/blocked-words", `{"words":["foo"]}`)

		require.Equal(t, http.StatusForbidden, w.Code)
		var body httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "invalid_token_rights", body.Code)
	})
}

func TestUserHandler_UpdateSettings(t *testing.T) {
	user := &domain.User{ID: uuid.Must(uuid.NewV7()), AllowAnonymous: true}
	auth := &authDomain.AuthContext{User: user, Rights: authDomain.RightsAll}

	t.Run("Success", func(t *testing.T) {
		useCase, router := newUserRouter(auth)
		updated := *user
		updated.SafeMode = true
		useCase.On("UpdateSettings", mock.Anything, auth, mock.MatchedBy(func(in *domain.UpdateSettingsInput) bool {
			return in.SafeMode != nil && *in.SafeMode && in.AllowAnonymous == nil
		})).Return(&updated, nil)

		w := serve(router, http.MethodPut, "/v1/users/me/settings", `{"safe_mode":true}`)

		require.Equal(t, http.StatusOK, w.Code)
		var body dto.SettingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.SafeMode)
		assert.True(t, body.AllowAnonymous)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		_, router := newUserRouter(auth)

		w := serve(router, http.MethodPut, "/v1/users/me/settings", `{"safe_mode":"yes"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
