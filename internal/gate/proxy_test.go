package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/apigate/api"
)

func TestNewProxy_InvalidTarget(t *testing.T) {
	for _, target := range []string{"", "://bad", "localhost"} {
		_, err := NewProxy(target, newTestLogger())
		assert.Error(t, err, target)
	}
}

func TestProxy_ForwardsThroughGate(t *testing.T) {
	var seen http.Header
	var seenPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		seenPath = r.URL.RequestURI()
		w.Header().Set("Access-Control-Allow-Origin", "https://upstream.example")
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer backend.Close()

	proxy, err := NewProxy(backend.URL, newTestLogger())
	require.NoError(t, err)
	h := Middleware(newTestChain(t), newTestLogger())(proxy)

	r := httptest.NewRequest(http.MethodGet, "/wp-json/wc/v3/orders?page=2", nil)
	r.Header.Set(api.WhitelistedHeader, "spoofed")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "/wp-json/wc/v3/orders?page=2", seenPath)
	assert.Equal(t, []string{"1"}, seen.Values(api.WhitelistedHeader))
	assert.Equal(t, []string{"*"}, rec.Header().Values("Access-Control-Allow-Origin"))
	assert.Equal(t, "yes", rec.Header().Get("X-Upstream"))
}

func TestProxy_NotWhitelistedKeepsUpstreamHeaders(t *testing.T) {
	var seen http.Header
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Access-Control-Allow-Origin", "https://upstream.example")
	}))
	defer backend.Close()

	proxy, err := NewProxy(backend.URL, newTestLogger())
	require.NoError(t, err)
	h := Middleware(newTestChain(t), newTestLogger())(proxy)

	r := httptest.NewRequest(http.MethodGet, "/blog/", nil)
	r.Header.Set(api.WhitelistedHeader, "1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, seen.Values(api.WhitelistedHeader))
	assert.Equal(t, "https://upstream.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProxy_UpstreamDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	proxy, err := NewProxy(url, newTestLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
