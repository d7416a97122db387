package pushover

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Clients are pooled per timeout so every Client with the same timeout shares
// one transport and its idle connections to the API host.
type httpClientPool struct {
	mu      sync.Mutex
	clients map[time.Duration]*http.Client
}

var sharedHTTPClientPool = &httpClientPool{
	clients: map[time.Duration]*http.Client{},
}

func (p *httpClientPool) client(timeout time.Duration) *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.clients[timeout]; ok {
		return existing
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	p.clients[timeout] = client
	return client
}
