// Package config provides configuration management for the BactoCloud
// downloader.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\bactocloud\config
//   - Unix: ~/.config/bactocloud/config
//
// INI format:
//
//	[bactocloud]
//	api_url = https://api.bactocloud.com
//	api_key = <api-key>
//	output_dir = ./downloads
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	no_proxy =
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultBaseURL is the production BactoCloud API endpoint.
const DefaultBaseURL = "https://api.bactocloud.com"

// DefaultOutputDir is the download root used when neither flag nor
// config specify one.
const DefaultOutputDir = "./downloads"

// ConfigDir is the per-user directory name under ~/.config.
const ConfigDir = "bactocloud"

// Config holds connection and download settings.
type Config struct {
	// BactoCloud connection settings. APIKey requires the PermDeviceView
	// and PermDataView scopes.
	BaseURL string `ini:"api_url"`
	APIKey  string `ini:"api_key"`

	// OutputDir is the root of the download tree.
	OutputDir string `ini:"output_dir"`

	// Proxy settings. Mode is one of "no-proxy", "system", "basic", "ntlm".
	ProxyMode     string `ini:"mode"`
	ProxyHost     string `ini:"host"`
	ProxyPort     int    `ini:"port"`
	ProxyUser     string `ini:"user"`
	ProxyPassword string `ini:"-"` // never persisted, prompt or env only
	NoProxy       string `ini:"no_proxy"`
}

// Validation errors
var (
	ErrMissingBaseURL = errors.New("api_url is required")
	ErrMissingAPIKey  = errors.New("api_key is required")
)

// New creates a Config with default values.
func New() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		OutputDir: DefaultOutputDir,
		ProxyMode: "no-proxy",
	}
}

// DefaultPath returns the default path for the config file.
// - Windows: %USERPROFILE%\.config\bactocloud\config
// - Unix: ~/.config/bactocloud/config
func DefaultPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config"), nil
}

func userConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		return filepath.Join(userProfile, ".config", ConfigDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", ConfigDir), nil
}

// Load reads configuration from an INI file. An empty path selects the
// default location. A missing file yields defaults and no error; an
// unreadable or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	section := iniFile.Section("bactocloud")
	cfg.BaseURL = section.Key("api_url").MustString(cfg.BaseURL)
	cfg.APIKey = section.Key("api_key").String()
	cfg.OutputDir = section.Key("output_dir").MustString(cfg.OutputDir)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()

	return cfg, nil
}

// Save writes configuration to an INI file, creating parent directories
// as needed. The API key is stored in the file, so the file is written
// with user-only permissions, via a temporary file and atomic rename.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	section, err := iniFile.NewSection("bactocloud")
	if err != nil {
		return fmt.Errorf("failed to create bactocloud section: %w", err)
	}
	section.Key("api_url").SetValue(cfg.BaseURL)
	section.Key("api_key").SetValue(cfg.APIKey)
	section.Key("output_dir").SetValue(cfg.OutputDir)

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(fmt.Sprintf("%d", cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks that the configuration can reach the API.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
