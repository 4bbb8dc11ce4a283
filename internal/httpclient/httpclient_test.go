package httpclient

import (
	"testing"

	"github.com/bnovate/bactocloud-dl/internal/config"
)

func TestBuildProxyURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			"host and port",
			config.Config{ProxyHost: "proxy.example.com", ProxyPort: 3128},
			"http://proxy.example.com:3128",
		},
		{
			"default port",
			config.Config{ProxyHost: "proxy.example.com"},
			"http://proxy.example.com:8080",
		},
		{
			"credentials embedded only when complete",
			config.Config{ProxyHost: "p", ProxyPort: 8080, ProxyUser: "u", ProxyPassword: "s"},
			"http://u:s@p:8080",
		},
		{
			"user without password omitted",
			config.Config{ProxyHost: "p", ProxyPort: 8080, ProxyUser: "u"},
			"http://p:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildProxyURL(&tt.cfg).String(); got != tt.want {
				t.Errorf("buildProxyURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRejectsUnknownProxyMode(t *testing.T) {
	cfg := config.New()
	cfg.ProxyMode = "socks5"
	if _, err := New(cfg); err == nil {
		t.Error("New() should reject unsupported proxy mode")
	}
}

func TestNewNoProxyMode(t *testing.T) {
	client, err := New(config.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client == nil {
		t.Fatal("New() returned nil client")
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want bool
	}{
		{"no proxy", config.Config{ProxyMode: "no-proxy"}, false},
		{"basic with user, no password", config.Config{ProxyMode: "basic", ProxyUser: "u"}, true},
		{"ntlm with user, no password", config.Config{ProxyMode: "ntlm", ProxyUser: "u"}, true},
		{"basic complete", config.Config{ProxyMode: "basic", ProxyUser: "u", ProxyPassword: "p"}, false},
		{"basic anonymous", config.Config{ProxyMode: "basic"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsProxyPassword(&tt.cfg); got != tt.want {
				t.Errorf("NeedsProxyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
