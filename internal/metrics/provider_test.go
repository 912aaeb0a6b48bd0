package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, p *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestProvider_ExportsInstrumentsAndRuntime(t *testing.T) {
	p, err := NewProvider("questionit")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, p.Shutdown(context.Background())) })

	counter, err := p.MeterProvider().Meter("test").Int64Counter("questionit_sample_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	body := scrape(t, p)
	assert.Regexp(t, `questionit_sample_total(\{[^}]*\})? 2`, body)
	assert.Contains(t, body, "go_goroutines")
	assert.Regexp(t, `target_info\{[^}]*service_name="questionit"`, body)
}

func TestProvider_RegistriesAreIndependent(t *testing.T) {
	first, err := NewProvider("first")
	require.NoError(t, err)
	second, err := NewProvider("second")
	require.NoError(t, err)

	counter, err := first.MeterProvider().Meter("test").Int64Counter("only_first_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.Contains(t, scrape(t, first), "only_first_total")
	assert.NotContains(t, scrape(t, second), "only_first_total")
}

func TestProvider_Shutdown(t *testing.T) {
	p, err := NewProvider("questionit")
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))

	assert.NoError(t, (&Provider{}).Shutdown(context.Background()))
}
