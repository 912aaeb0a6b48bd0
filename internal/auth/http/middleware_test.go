package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/questionit/api/internal/auth/domain"
	usecaseMocks "github.com/questionit/api/internal/auth/usecase/mocks"
	"github.com/questionit/api/internal/httputil"
	userDomain "github.com/questionit/api/internal/user/domain"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"Valid", "Bearer abc.def", "abc.def", true},
		{"LowercaseScheme", "bearer abc.def", "abc.def", true},
		{"Missing", "", "", false},
		{"OtherScheme", "Basic dXNlcjpwYXNz", "", false},
		{"EmptyToken", "Bearer   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			got, ok := bearerToken(c)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

	newRouter := func(useCase *usecaseMocks.MockAuthenticationUseCase) *gin.Engine {
		router := gin.New()
		router.Use(AuthenticationMiddleware(useCase, discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			auth, ok := GetAuth(c.Request.Context())
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"user_id": auth.User.ID.String()})
		})
		return router
	}

	t.Run("Success", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}
		auth := &authDomain.AuthContext{User: user, Rights: authDomain.RightsAll}
		useCase.On("Authenticate", mock.Anything, "valid-token", "192.0.2.1").Return(auth, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		newRouter(useCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID.String())
		useCase.AssertExpectations(t)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}

		w := httptest.NewRecorder()
		newRouter(useCase).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_expired_token", decodeError(t, w).Code)
		useCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidCredential", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}
		useCase.On("Authenticate", mock.Anything, "stale", mock.Anything).
			Return(nil, authDomain.ErrInvalidExpiredToken).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer stale")
		newRouter(useCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_expired_token", decodeError(t, w).Code)
	})

	t.Run("BannedUser", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}
		useCase.On("Authenticate", mock.Anything, "banned", mock.Anything).
			Return(nil, authDomain.ErrBannedUser).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer banned")
		newRouter(useCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "banned_user", decodeError(t, w).Code)
	})
}

func TestOptionalAuthenticationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(useCase *usecaseMocks.MockAuthenticationUseCase) *gin.Engine {
		router := gin.New()
		router.Use(OptionalAuthenticationMiddleware(useCase, discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			auth, ok := GetAuth(c.Request.Context())
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"anonymous": auth.IsAnonymous()})
		})
		return router
	}

	t.Run("AnonymousWithoutHeader", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}
		useCase.On("AuthenticateOrAnonymous", mock.Anything, "", mock.Anything).
			Return(authDomain.Anonymous(), nil).Once()

		w := httptest.NewRecorder()
		newRouter(useCase).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
	})

	t.Run("BannedUserRejected", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}
		useCase.On("AuthenticateOrAnonymous", mock.Anything, "banned", mock.Anything).
			Return(nil, authDomain.ErrBannedUser).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer banned")
		newRouter(useCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("StorageFailureIsInternalError", func(t *testing.T) {
		useCase := &usecaseMocks.MockAuthenticationUseCase{}
		useCase.On("AuthenticateOrAnonymous", mock.Anything, "valid", mock.Anything).
			Return(nil, errors.New("connection refused")).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid")
		newRouter(useCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w).Error)
	})
}

func TestRightsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

	newRouter := func(auth *authDomain.AuthContext, caps ...authDomain.Rights) *gin.Engine {
		router := gin.New()
		if auth != nil {
			router.Use(func(c *gin.Context) {
				c.Request = c.Request.WithContext(WithAuth(c.Request.Context(), auth))
				c.Next()
			})
		}
		router.Use(RightsMiddleware(discardLogger(), caps...))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	tests := []struct {
		name   string
		auth   *authDomain.AuthContext
		caps   []authDomain.Rights
		status int
	}{
		{
			name:   "HasRights",
			auth:   &authDomain.AuthContext{User: user, Rights: authDomain.SendQuestion | authDomain.ReadTimeline},
			caps:   []authDomain.Rights{authDomain.SendQuestion, authDomain.ReadTimeline},
			status: http.StatusOK,
		},
		{
			name:   "MissingRight",
			auth:   &authDomain.AuthContext{User: user, Rights: authDomain.SendQuestion},
			caps:   []authDomain.Rights{authDomain.ManageBlockedWords},
			status: http.StatusForbidden,
		},
		{
			name:   "AnonymousPasses",
			auth:   authDomain.Anonymous(),
			caps:   []authDomain.Rights{authDomain.SendQuestion},
			status: http.StatusOK,
		},
		{
			name:   "NoContext",
			auth:   nil,
			caps:   []authDomain.Rights{authDomain.SendQuestion},
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.auth, tt.caps...).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
