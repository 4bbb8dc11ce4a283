package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvAPIKey is the environment variable checked as the last key source.
const EnvAPIKey = "BACTOCLOUD_API_KEY"

// ResolveAPIKey returns an API key by checking sources in priority order:
//
//  1. Provided apiKey parameter (from --api-key flag)
//  2. Explicit token file (from --token-file flag)
//  3. Default token file (~/.config/bactocloud/token)
//  4. Config file api_key
//  5. BACTOCLOUD_API_KEY environment variable
//
// Returns the key and a source label ("flag", "token-file", "config",
// "environment") for --verbose diagnostics, or empty strings when no
// source yields a key.
func ResolveAPIKey(apiKey, tokenFile string, cfg *Config) (string, string) {
	if apiKey != "" {
		return apiKey, "flag"
	}

	if tokenFile != "" {
		if key, err := ReadTokenFile(tokenFile); err == nil && key != "" {
			return key, "token-file"
		}
	}

	if tokenPath := DefaultTokenPath(); tokenPath != "" {
		if key, err := ReadTokenFile(tokenPath); err == nil && key != "" {
			return key, "token-file"
		}
	}

	if cfg != nil && cfg.APIKey != "" {
		return cfg.APIKey, "config"
	}

	if envKey := os.Getenv(EnvAPIKey); envKey != "" {
		return envKey, "environment"
	}

	return "", ""
}

// DefaultTokenPath returns the default token file path, or "" when the
// user's config directory cannot be determined.
func DefaultTokenPath() string {
	dir, err := userConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "token")
}

// ReadTokenFile reads an API key from a file, trimming surrounding
// whitespace and trailing newlines.
func ReadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteTokenFile stores an API key in a file with user-only permissions,
// creating parent directories as needed.
func WriteTokenFile(path, key string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
