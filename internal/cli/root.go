// Package cli provides the command-line interface for bactocloud-dl.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bnovate/bactocloud-dl/internal/config"
	"github.com/bnovate/bactocloud-dl/internal/httpclient"
	"github.com/bnovate/bactocloud-dl/internal/logging"
	"github.com/bnovate/bactocloud-dl/internal/version"
)

var (
	// Global flags
	cfgFile    string
	apiKey     string
	tokenFile  string
	apiBaseURL string
	verbose    bool

	// Global logger, initialized in PersistentPreRun.
	logger *logging.Logger
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bactocloud-dl",
		Short: "Download BactoCloud measurement data",
		Long: `bactocloud-dl ` + version.Version + ` - Built: ` + version.BuildTime + `
Downloads measurement metadata and FCS payloads from the BactoCloud API
into a local directory tree keyed by device serial and measurement time.

The API key needs the PermDeviceView and PermDataView scopes. Store it
once with 'bactocloud-dl config init', or pass it via --api-key,
--token-file or the ` + config.EnvAPIKey + ` environment variable.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "BactoCloud API key (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Path to file containing the API key")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "BactoCloud API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig assembles the effective configuration from the config
// file, flags and the API key resolution chain. Returns an error when
// no API key can be found anywhere.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if apiBaseURL != "" {
		cfg.BaseURL = apiBaseURL
	}

	key, source := config.ResolveAPIKey(apiKey, tokenFile, cfg)
	if key == "" {
		return nil, fmt.Errorf("no API key found: run 'bactocloud-dl config init', or pass --api-key, --token-file or set %s", config.EnvAPIKey)
	}
	cfg.APIKey = key
	logger.Debugf("API key source: %s", source)

	if httpclient.NeedsProxyPassword(cfg) {
		password, err := readSecret(fmt.Sprintf("Password for proxy user %s: ", cfg.ProxyUser))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		cfg.ProxyPassword = password
	}

	return cfg, cfg.Validate()
}
