package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/auth/http/dto"
	usecaseMocks "github.com/questionit/api/internal/auth/usecase/mocks"
	userDomain "github.com/questionit/api/internal/user/domain"
)

func newApplicationRouter(user *userDomain.User) (*usecaseMocks.MockApplicationUseCase, *gin.Engine) {
	useCase := &usecaseMocks.MockApplicationUseCase{}
	handler := NewApplicationHandler(useCase, discardLogger())

	router := authedRouter(firstPartyAuth(user))
	router.POST("/v1/applications", handler.CreateHandler)
	router.GET("/v1/applications", handler.ListHandler)
	router.PUT("/v1/applications/:id", handler.UpdateHandler)
	router.POST("/v1/applications/:id/key", handler.RegenerateKeyHandler)
	router.DELETE("/v1/applications/:id", handler.DeleteHandler)
	router.GET("/v1/subscriptions", handler.ListSubscriptionsHandler)
	router.DELETE("/v1/subscriptions/:id", handler.UnsubscribeHandler)
	return useCase, router
}

func testApplication(ownerID uuid.UUID) *authDomain.Application {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return &authDomain.Application{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       ownerID,
		Name:          "My Client",
		URL:           "https://client.example.com",
		Key:           "app-key",
		DefaultRights: authDomain.SendQuestion | authDomain.ReadTimeline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestApplicationHandler_Create(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		app := testApplication(user.ID)

		useCase.On("Create", mock.Anything, user.ID, &authDomain.CreateApplicationInput{
			Name:   "My Client",
			URL:    "https://client.example.com",
			Rights: map[string]bool{"sendQuestion": true, "readTimeline": true},
		}).Return(app, nil).Once()

		w := serveJSON(router, http.MethodPost, "/v1/applications", map[string]any{
			"name":   "My Client",
			"url":    "https://client.example.com",
			"rights": map[string]bool{"sendQuestion": true, "readTimeline": true},
		})

		require.Equal(t, http.StatusCreated, w.Code)
		var body dto.ApplicationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, app.ID.String(), body.ID)
		assert.Equal(t, "app-key", body.Key)
		assert.True(t, body.Rights["sendQuestion"])
		assert.False(t, body.Rights["internalUseOnly"])
		useCase.AssertExpectations(t)
	})

	t.Run("NameTooShort", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)

		w := serveJSON(router, http.MethodPost, "/v1/applications", map[string]any{
			"name":   "x",
			"rights": map[string]bool{},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("QuotaReached", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		useCase.On("Create", mock.Anything, user.ID, mock.Anything).
			Return(nil, authDomain.ErrTooManyApplications).Once()

		w := serveJSON(router, http.MethodPost, "/v1/applications", map[string]any{
			"name":   "My Client",
			"rights": map[string]bool{},
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "too_many_applications", decodeError(t, w).Code)
	})
}

func TestApplicationHandler_List(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}
	useCase, router := newApplicationRouter(user)
	app := testApplication(user.ID)

	useCase.On("List", mock.Anything, user.ID).Return([]*authDomain.Application{app}, nil).Once()

	w := serveJSON(router, http.MethodGet, "/v1/applications", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.ListApplicationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "My Client", body.Data[0].Name)
}

func TestApplicationHandler_Update(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		app := testApplication(user.ID)

		useCase.On("Update", mock.Anything, user.ID, app.ID, &authDomain.UpdateApplicationInput{
			Name:   "Renamed",
			Rights: map[string]bool{"readTimeline": false},
		}).Return(app, nil).Once()

		w := serveJSON(router, http.MethodPut, "/v1/applications/"+app.ID.String(), map[string]any{
			"name":   "Renamed",
			"rights": map[string]bool{"readTimeline": false},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)

		w := serveJSON(router, http.MethodPut, "/v1/applications/not-a-uuid", map[string]any{
			"name":   "Renamed",
			"rights": map[string]bool{},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotOwner", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Update", mock.Anything, user.ID, id, mock.Anything).
			Return(nil, authDomain.ErrForbidden).Once()

		w := serveJSON(router, http.MethodPut, "/v1/applications/"+id.String(), map[string]any{
			"name":   "Renamed",
			"rights": map[string]bool{},
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestApplicationHandler_RegenerateKey(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}
	useCase, router := newApplicationRouter(user)
	app := testApplication(user.ID)
	app.Key = "fresh-key"

	useCase.On("RegenerateKey", mock.Anything, user.ID, app.ID).Return(app, nil).Once()

	w := serveJSON(router, http.MethodPost, "/v1/applications/"+app.ID.String()+"/key", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fresh-key")
}

func TestApplicationHandler_Delete(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

	t.Run("Success", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Delete", mock.Anything, user.ID, id).Return(nil).Once()

		w := serveJSON(router, http.MethodDelete, "/v1/applications/"+id.String(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Delete", mock.Anything, user.ID, id).Return(authDomain.ErrApplicationNotFound).Once()

		w := serveJSON(router, http.MethodDelete, "/v1/applications/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestApplicationHandler_Subscriptions(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

	t.Run("ListHidesKeys", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		app := testApplication(uuid.Must(uuid.NewV7()))
		useCase.On("ListSubscribed", mock.Anything, user.ID).Return([]*authDomain.Application{app}, nil).Once()

		w := serveJSON(router, http.MethodGet, "/v1/subscriptions", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "app-key")
		assert.Contains(t, w.Body.String(), app.ID.String())
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Unsubscribe", mock.Anything, user.ID, id).Return(nil).Once()

		w := serveJSON(router, http.MethodDelete, "/v1/subscriptions/"+id.String(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("UnsubscribeNothingToRevoke", func(t *testing.T) {
		useCase, router := newApplicationRouter(user)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Unsubscribe", mock.Anything, user.ID, id).Return(authDomain.ErrResourceNotFound).Once()

		w := serveJSON(router, http.MethodDelete, "/v1/subscriptions/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "resource_not_found", decodeError(t, w).Code)
	})
}
