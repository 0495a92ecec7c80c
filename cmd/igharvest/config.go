package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igharvest/pkg/config"
	"igharvest/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igharvest configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGHARVEST_*)
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as '.igharvest.yaml'
unless a different path is given with the --config flag.`,
	Run: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".igharvest.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# igharvest configuration file
#
# Every option can also be set with an IGHARVEST_* environment
# variable, for example IGHARVEST_OUTPUT_DIR or IGHARVEST_DELAY.
# Durations use Go syntax: 500ms, 2s, 1m30s.

# Output locations
output:
  # Directory the images are saved in
  directory: "instagram_images"

  # File the discovered URL list is written to
  urls_file: "instagram_urls.txt"

# Acquisition behavior
download:
  # Per-request timeout
  request_timeout: "30s"

  # Pause after each completed request
  delay: "500ms"

  # Retry attempts for retryable failures
  max_retries: 3

  # HTTP statuses worth retrying
  retry_statuses: [429, 500, 502, 503, 504]

  # Scale factor for the retry backoff
  backoff_factor: 1.0

  # Prefix files with their position in the list (0001_, 0002_, ...)
  index_prefix: true

# Browser session used by discover
browser:
  # Run Chrome without a window
  headless: false

  # Browser identity, shared by discovery and the CDN fetches.
  # Leave empty to use the built-in default.
  user_agent: ""

  # Settle time after the profile page loads
  page_load_wait: "5s"

# Scroll behavior for discover
discovery:
  # Cap on scroll iterations
  max_scrolls: 50

  # Wait after each scroll for new content to load
  scroll_delay: "2s"

  # Wait after the scroll-up nudge used to revive a stuck page
  nudge_delay: "1s"

  # Parse the raw page source when fewer images than this are found
  min_dom_results: 5

# Offline extraction (the extract command)
extract:
  # Fall back from network-export parsing to a raw text scan
  # when it finds fewer URLs than this
  min_results: 5

# Run-completion notifications
notifications:
  enabled: true
  on_complete: true
  on_error: true

  # terminal, desktop, or none
  notification_type: "terminal"

# Logging
logging:
  # debug, info, warn, error
  level: "info"

  # Log file path; leave empty to log to the console only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the options to taste")
	fmt.Println("2. Run 'igharvest config validate' to check the configuration")
	fmt.Println("3. Start with 'igharvest discover <username>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Effective configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGHARVEST_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".igharvest.yaml",
			".igharvest.yml",
			"igharvest.yaml",
			"igharvest.yml",
			filepath.Join(os.Getenv("HOME"), ".igharvest.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "igharvest", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "specify one with the --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string
	var errors []string

	// Path accessibility
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	// Value ranges beyond the hard validation in config.Load
	if cfg.Download.MaxRetries > 10 {
		errors = append(errors, "max_retries must be between 0 and 10")
	}
	if cfg.Download.Delay < 100*time.Millisecond {
		warnings = append(warnings, "delay under 100ms risks rate limiting")
	}
	if cfg.Discovery.MaxScrolls > 500 {
		warnings = append(warnings, "max_scrolls over 500 makes sessions very long")
	}
	if cfg.Browser.PageLoadWait < time.Second {
		warnings = append(warnings, "page_load_wait under 1s may miss the initial render")
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors")
		for _, e := range errors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  URL list: %s\n", cfg.Output.URLsFile)
	fmt.Printf("  Request delay: %s\n", cfg.Download.Delay)
	fmt.Printf("  Max retries: %d\n", cfg.Download.MaxRetries)
	fmt.Printf("  Scroll cap: %d\n", cfg.Discovery.MaxScrolls)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
