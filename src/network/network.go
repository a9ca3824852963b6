package network

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"macro-observer/src/helpers"
	"macro-observer/src/interfaces"
	"macro-observer/src/logger"
	"macro-observer/src/models"
)

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger

	// client is swapped on proxy rotation while batch goroutines are
	// mid-request, so access goes through the lock.
	mu     sync.RWMutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := &http.Transport{}

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()

	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) currentClient() *http.Client {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	return nm.client
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
func (nm *AsyncNetworkManager) Get(urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i*i) * time.Second) // Exponential backoff
			nm.rotateProxy()
		}

		req, err := http.NewRequest("GET", finalUrl, nil)
		if err != nil {
			return nil, err
		}

		ua := nm.Config.Network.UserAgent
		if ua == "" {
			ua = nm.ProxyManager.GetUserAgent()
		}
		req.Header.Set("User-Agent", ua)

		resp, err := nm.currentClient().Do(req)
		if err != nil {
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode == 403 {
			resp.Body.Close()
			lastErr = fmt.Errorf("blocked (status %d)", resp.StatusCode)
			nm.Logger.Info("Request blocked (%d). Rotating proxy.", resp.StatusCode)
			continue
		}

		if resp.StatusCode != 200 {
			resp.Body.Close()
			lastErr = fmt.Errorf("bad status: %d", resp.StatusCode)
			nm.Logger.Info("Bad status %d", resp.StatusCode)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %v", lastErr)
}
