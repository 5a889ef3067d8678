// Package httpclient builds the HTTP client used for upstream calls.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig tunes the upstream transport.
// All traffic goes to a single upstream host, so the idle pool is sized per host.
type ClientConfig struct {
	// Timeout bounds a whole upstream call, body included.
	// Zero leaves the call unbounded; only the inbound request context can end it.
	Timeout time.Duration

	IdlePoolSize        int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig returns pooling defaults with no overall timeout.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		IdlePoolSize:        100,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// NewHTTPClient returns a client whose transport honours HTTPS_PROXY and friends.
// Zero-valued fields in cfg fall back to DefaultConfig, except Timeout.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	def := DefaultConfig()
	if cfg.IdlePoolSize <= 0 {
		cfg.IdlePoolSize = def.IdlePoolSize
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.TLSHandshakeTimeout <= 0 {
		cfg.TLSHandshakeTimeout = def.TLSHandshakeTimeout
	}

	dialer := &net.Dialer{Timeout: cfg.DialTimeout}

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        cfg.IdlePoolSize,
			MaxIdleConnsPerHost: cfg.IdlePoolSize,
			IdleConnTimeout:     cfg.IdleConnTimeout,
			TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		},
	}
}
