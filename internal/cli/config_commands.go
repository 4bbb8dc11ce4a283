package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnovate/bactocloud-dl/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stored configuration and API key",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// newConfigInitCmd interactively stores the API key and defaults.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Store the API key and default settings",
		Long: `Prompt for the BactoCloud API key and store it in the per-user token
file with owner-only permissions. Also writes the config file with the
current defaults so it can be edited by hand later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			key, err := readSecret("BactoCloud API key: ")
			if err != nil {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			if key == "" {
				return fmt.Errorf("no API key entered")
			}

			outputDir, err := readLine(fmt.Sprintf("Output directory [%s]: ", cfg.OutputDir))
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			tokenPath := tokenFile
			if tokenPath == "" {
				tokenPath = config.DefaultTokenPath()
			}
			if tokenPath == "" {
				return fmt.Errorf("cannot determine token file location")
			}
			if err := config.WriteTokenFile(tokenPath, key); err != nil {
				return err
			}

			// The key lives in the token file; keep it out of the config.
			cfg.APIKey = ""
			if err := config.Save(cfg, cfgFile); err != nil {
				return err
			}

			logger.Infof("API key stored in %s", tokenPath)
			return nil
		},
	}
}

// newConfigShowCmd prints the effective configuration with the key masked.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if apiBaseURL != "" {
				cfg.BaseURL = apiBaseURL
			}

			key, source := config.ResolveAPIKey(apiKey, tokenFile, cfg)

			fmt.Printf("api_url:    %s\n", cfg.BaseURL)
			fmt.Printf("api_key:    %s (source: %s)\n", maskKey(key), sourceOrNone(source))
			fmt.Printf("output_dir: %s\n", cfg.OutputDir)
			fmt.Printf("proxy:      %s\n", cfg.ProxyMode)
			if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
				fmt.Printf("proxy_host: %s:%d\n", cfg.ProxyHost, cfg.ProxyPort)
			}
			return nil
		},
	}
}

// maskKey shows just enough of the key to recognize it.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func sourceOrNone(source string) string {
	if source == "" {
		return "none"
	}
	return source
}
