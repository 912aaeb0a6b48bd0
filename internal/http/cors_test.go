package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"https://app.questionit.test", []string{"https://app.questionit.test"}},
		{" https://a.test , https://b.test ,", []string{"https://a.test", "https://b.test"}},
		{"*", []string{"*"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseOrigins(tt.in), "input %q", tt.in)
	}
}

func TestCreateCORSMiddleware_Off(t *testing.T) {
	assert.Nil(t, createCORSMiddleware(false, "https://app.questionit.test", slog.Default()))
	assert.Nil(t, createCORSMiddleware(true, "", slog.Default()))
	assert.Nil(t, createCORSMiddleware(true, " , ", slog.Default()))
}

// corsRequest sends a request with origin through a router using the CORS policy built
// from origins.
func corsRequest(t *testing.T, origins, method, origin string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	middleware := createCORSMiddleware(true, origins, slog.Default())
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.Any("/v1/questions", func(c *gin.Context) {
		c.Header("Retry-After", "1")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(method, "/v1/questions", nil)
	req.Header.Set("Origin", origin)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_ListedOrigin(t *testing.T) {
	w := corsRequest(t, "https://app.questionit.test,https://admin.questionit.test",
		http.MethodGet, "https://admin.questionit.test", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://admin.questionit.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestCORS_UnlistedOriginRejected(t *testing.T) {
	w := corsRequest(t, "https://app.questionit.test", http.MethodGet, "https://evil.test", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	w := corsRequest(t, "https://app.questionit.test", http.MethodOptions, "https://app.questionit.test",
		http.Header{
			"Access-Control-Request-Method":  {http.MethodPost},
			"Access-Control-Request-Headers": {"Authorization"},
		})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_WildcardAllowsAnyOrigin(t *testing.T) {
	w := corsRequest(t, "https://app.questionit.test, *", http.MethodGet, "https://third-party.test", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
