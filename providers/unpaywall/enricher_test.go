package unpaywall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
)

func newTestEnricher(t *testing.T, baseURL, email string) *Enricher {
	t.Helper()
	e, err := NewEnricher(&config.Config{UnpaywallBaseURL: baseURL, UnpaywallEmail: email, UnpaywallCacheSize: 8}, zaptest.NewLogger(t))
	require.NoError(t, err)
	e.Client = providers.NewClient(providers.ClientOptions{MaxAttempts: 1}, zaptest.NewLogger(t))
	return e
}

func TestPDFLink_CachesResults(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "lab@example.org", r.URL.Query().Get("email"))
		w.Write([]byte(`{"is_oa":true,"best_oa_location":{"url":"https://x.org/landing","url_for_pdf":"https://x.org/a.pdf"}}`))
	}))
	defer srv.Close()

	e := newTestEnricher(t, srv.URL, "lab@example.org")
	for i := 0; i < 3; i++ {
		link, err := e.PDFLink(context.Background(), "10.1/x")
		require.NoError(t, err)
		assert.Equal(t, "https://x.org/a.pdf", link)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPDFLink_FallsBackToLandingPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_oa":true,"best_oa_location":{"url":"https://x.org/landing"}}`))
	}))
	defer srv.Close()

	link, err := newTestEnricher(t, srv.URL, "lab@example.org").PDFLink(context.Background(), "10.1/y")
	require.NoError(t, err)
	assert.Equal(t, "https://x.org/landing", link)
}

func TestPDFLink_UnknownDOI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	link, err := newTestEnricher(t, srv.URL, "lab@example.org").PDFLink(context.Background(), "10.1/missing")
	require.NoError(t, err)
	assert.Empty(t, link)
}

func TestPDFLink_RequiresEmail(t *testing.T) {
	e := newTestEnricher(t, "http://unused", "")
	assert.False(t, e.Enabled())
	_, err := e.PDFLink(context.Background(), "10.1/x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
