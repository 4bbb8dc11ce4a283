// Package httpclient builds the HTTP client used for all BactoCloud API
// traffic, including corporate proxy support (system, basic and NTLM
// authenticated proxies with bypass lists).
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/http2"

	"github.com/bnovate/bactocloud-dl/internal/config"
)

const (
	dialTimeout          = 30 * time.Second
	dialKeepAlive        = 30 * time.Second
	idleConnTimeout      = 90 * time.Second
	tlsHandshakeTimeout  = 15 * time.Second
	expectContinueWindow = 1 * time.Second

	// Overall request ceiling. FCS payloads are a few megabytes at most,
	// so a stuck transfer should fail rather than hang a batch.
	clientTimeout = 300 * time.Second

	defaultProxyPort = 8080
)

// New configures an HTTP client according to the proxy settings in cfg.
func New(cfg *config.Config) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: dialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueWindow,
		ForceAttemptHTTP2:     true,
	}
	_ = http2.ConfigureTransport(transport)

	switch strings.ToLower(cfg.ProxyMode) {
	case "no-proxy", "":
		transport.Proxy = nil

	case "system":
		transport.Proxy = http.ProxyFromEnvironment

	case "basic":
		if cfg.ProxyHost == "" {
			// Incomplete saved config: fall back to direct connections so
			// the user can still reach the API and fix the settings.
			transport.Proxy = nil
			break
		}
		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.NoProxy)

	case "ntlm":
		if cfg.ProxyHost == "" {
			transport.Proxy = nil
			break
		}
		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.NoProxy)

		// NTLM challenge/response happens per connection; the negotiator
		// wraps the transport to replay requests during the handshake.
		return &http.Client{
			Transport: ntlmssp.Negotiator{RoundTripper: transport},
			Timeout:   clientTimeout,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", cfg.ProxyMode)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   clientTimeout,
	}, nil
}

// buildProxyURL constructs a proxy URL from config. Credentials are only
// embedded when both user and password are present; an empty password in
// the URL confuses some proxies.
func buildProxyURL(cfg *config.Config) *url.URL {
	port := cfg.ProxyPort
	if port == 0 {
		port = defaultProxyPort
	}

	proxyURL := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", cfg.ProxyHost, port),
	}

	if cfg.ProxyUser != "" && cfg.ProxyPassword != "" {
		proxyURL.User = url.UserPassword(cfg.ProxyUser, cfg.ProxyPassword)
	}

	return proxyURL
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy
// bypass list. With an empty list it behaves identically to
// http.ProxyURL.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string) func(*http.Request) (*url.URL, error) {
	if noProxy == "" {
		return http.ProxyURL(proxyURL)
	}
	proxyCfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := proxyCfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
}

// NeedsProxyPassword reports whether the proxy configuration requires a
// password that has not been provided. The CLI uses this to decide
// whether to prompt interactively.
func NeedsProxyPassword(cfg *config.Config) bool {
	mode := strings.ToLower(cfg.ProxyMode)
	if mode != "basic" && mode != "ntlm" {
		return false
	}
	return cfg.ProxyUser != "" && cfg.ProxyPassword == ""
}
