package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"igharvest/pkg/browser"
	"igharvest/pkg/config"
	"igharvest/pkg/discovery"
	"igharvest/pkg/instagram"
	"igharvest/pkg/logger"
	"igharvest/pkg/ui"
	"igharvest/pkg/urlstore"
)

var (
	discoverURLsFile string
	discoverScrolls  int
	discoverHeadless bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <username>",
	Short: "Scroll a profile in a real browser and collect image URLs",
	Long: `Discover opens the profile in a Chrome session, scrolls until the page
stops growing, and records every full-size image URL it sees on the way,
from both the rendered markup and the browser's network traffic.

The collected URLs are filtered (profile pictures and thumbnails are
dropped), deduplicated, and written to the URL list file, ready for
'igharvest fetch'.

The argument is a username or a full profile URL.`,
	Example: `  # Discover a profile by username
  igharvest discover naturephotos

  # Headless session with a smaller scroll cap
  igharvest discover naturephotos --headless --max-scrolls 20

  # Write the URL list somewhere specific
  igharvest discover naturephotos -o lists/nature.txt`,
	Args: cobra.ExactArgs(1),
	Run:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVarP(&discoverURLsFile, "urls-file", "o", "", "file the URL list is written to")
	discoverCmd.Flags().IntVar(&discoverScrolls, "max-scrolls", 0, "cap on scroll iterations for the session")
	discoverCmd.Flags().BoolVar(&discoverHeadless, "headless", false, "run the browser without a window")
}

func runDiscover(cmd *cobra.Command, args []string) {
	target := strings.TrimSpace(args[0])

	flags := make(map[string]interface{})
	if discoverURLsFile != "" {
		flags["urls-file"] = discoverURLsFile
	}
	if discoverScrolls > 0 {
		flags["max-scrolls"] = discoverScrolls
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = discoverHeadless
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	// A bare username becomes a profile URL; anything starting with
	// http is taken as-is so saved profiles and mirrors work too.
	profileURL := target
	if !strings.HasPrefix(target, "http") {
		username := instagram.SanitizeUsername(target)
		if !instagram.IsValidUsername(username) {
			ui.PrintError("Invalid username", target)
			os.Exit(1)
		}
		profileURL = instagram.GetUserProfileURL(username)
	}

	ui.PrintInfo("Profile", profileURL)

	// Ctrl-C abandons the scroll but still releases the browser
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.NewRunLogger()

	session, err := browser.NewChromeSession(ctx, browser.Options{
		Headless:  cfg.Browser.Headless,
		UserAgent: cfg.Browser.UserAgent,
	}, log)
	if err != nil {
		ui.PrintError("Failed to start browser", err.Error())
		os.Exit(1)
	}

	store := urlstore.New()
	engine := discovery.New(session, store, cfg, log)

	tracker := ui.NewScanTracker(cfg.Discovery.MaxScrolls)
	engine.SetProgress(func(scrolls, height int) {
		tracker.RecordScroll(height)
		tracker.PrintProgress()
	})

	logger.LogComponentStart("discovery", map[string]interface{}{
		"profile":     profileURL,
		"max_scrolls": cfg.Discovery.MaxScrolls,
		"headless":    cfg.Browser.Headless,
	})

	result, err := engine.Run(ctx, profileURL)
	if err != nil {
		fmt.Println()
		logger.LogComponentStop("discovery", "error")
		ui.PrintError("Discovery failed", err.Error())
		os.Exit(1)
	}
	tracker.Finish()
	logger.LogComponentStop("discovery", "completed")

	if err := store.Persist(cfg.Output.URLsFile); err != nil {
		ui.PrintError("Failed to write URL list", err.Error())
		os.Exit(1)
	}

	if result.URLs == 0 {
		ui.PrintWarning("No image URLs found", "the profile may be empty or not fully loaded")
		return
	}

	ui.PrintSuccess(fmt.Sprintf("Found %d image URLs (%d rejected as thumbnails or avatars)", result.URLs, store.Rejected()))
	ui.PrintInfo("Page markup", fmt.Sprintf("%d URLs", result.DOMCount))
	ui.PrintInfo("Network traffic", fmt.Sprintf("%d URLs", result.NetworkCount))
	ui.PrintInfo("URL list", cfg.Output.URLsFile)
	ui.PrintInfo("Next step", "igharvest fetch "+cfg.Output.URLsFile)
}
