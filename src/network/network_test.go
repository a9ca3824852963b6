package network

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"macro-observer/src/logger"
	"macro-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testManager(proxies []string) *AsyncNetworkManager {
	cfg := &models.MConfig{}
	cfg.Network.Enabled = len(proxies) > 0
	cfg.Network.Proxies = proxies
	cfg.Network.RequestTimeout = 5
	cfg.Network.MaxRetries = 0
	cfg.Network.ConcurrentRequests = 4
	return NewAsyncNetworkManager(cfg, logger.NewLogger(nil, "test"))
}

// -----------------------------------------------------------------------------

func TestGetReturnsBodyWithQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DGS10", r.URL.Query().Get("series_id"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := testManager(nil).Get(srv.URL, map[string]string{"series_id": "DGS10"})
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
}

// -----------------------------------------------------------------------------

func TestGetConcurrentWithProxyRotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	// The proxy is the test server itself, so proxied requests still land.
	nm := testManager([]string{srv.URL})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := nm.Get(srv.URL, map[string]string{"series_id": "DGS10"})
			assert.NoError(t, err)
			assert.Contains(t, string(body), "ok")
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nm.rotateProxy()
		}()
	}
	wg.Wait()
}
