package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"igharvest/internal/downloader"
	"igharvest/pkg/config"
	"igharvest/pkg/instagram"
	"igharvest/pkg/logger"
	"igharvest/pkg/models"
	"igharvest/pkg/storage"
	"igharvest/pkg/ui"
	"igharvest/pkg/ui/tui"
	"igharvest/pkg/urlstore"
)

var (
	fetchOutput  string
	fetchDelay   time.Duration
	fetchRetries int
	fetchNoIndex bool
	useTUI       bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls-file]",
	Short: "Download a discovered URL list into the output directory",
	Long: `Fetch reads a URL list produced by 'igharvest discover' or
'igharvest extract' and downloads each image in order, pausing between
requests. Images already present in the output directory are skipped,
so an interrupted run picks up where it left off.

Without an argument the configured URL list file is used.`,
	Example: `  # Fetch the default URL list
  igharvest fetch

  # Fetch a specific list into a specific directory
  igharvest fetch lists/nature.txt -o photos/nature

  # Slower pacing with more retries
  igharvest fetch --delay 2s --retries 5

  # Interactive progress view
  igharvest fetch --tui`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "directory the images are saved in")
	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", 0, "pause after each completed request")
	fetchCmd.Flags().IntVar(&fetchRetries, "retries", 0, "retry attempts for retryable failures")
	fetchCmd.Flags().BoolVar(&fetchNoIndex, "no-index-prefix", false, "name files without the position prefix")
	fetchCmd.Flags().BoolVar(&useTUI, "tui", false, "interactive terminal UI with live progress")
}

func runFetch(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if fetchOutput != "" {
		flags["output"] = fetchOutput
	}
	if cmd.Flags().Changed("delay") {
		flags["delay"] = fetchDelay
	}
	if cmd.Flags().Changed("retries") {
		flags["retries"] = fetchRetries
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
	if fetchNoIndex {
		cfg.Download.IndexPrefix = false
	}

	urlsFile := cfg.Output.URLsFile
	if len(args) == 1 {
		urlsFile = args[0]
	}

	store, err := urlstore.Load(urlsFile)
	if err != nil {
		ui.PrintError("Failed to read URL list", err.Error())
		ui.PrintInfo("Hint", "run 'igharvest discover <username>' first")
		os.Exit(1)
	}

	urls := store.All()
	if len(urls) == 0 {
		ui.PrintWarning("URL list is empty", urlsFile)
		return
	}

	ui.PrintInfo("URL list", fmt.Sprintf("%s (%d URLs)", urlsFile, len(urls)))

	manager, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}
	if existing := manager.Count(); existing > 0 {
		ui.PrintInfo("Resuming", fmt.Sprintf("%d images already in %s", existing, manager.Dir()))
	}

	log := logger.NewRunLogger()
	client := instagram.NewClient(cfg.Download.RequestTimeout, cfg.Browser.UserAgent, log)
	engine := downloader.NewEngine(client, manager, nil, cfg.Download, log)

	// Ctrl-C stops cleanly after the current URL, keeping what was fetched
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.LogComponentStart("downloader", map[string]interface{}{
		"urls":   len(urls),
		"output": manager.Dir(),
	})

	var summary models.Summary
	if useTUI {
		summary = runFetchTUI(ctx, stop, engine, urls, manager.Dir())
	} else {
		display := ui.NewFetchDisplay()
		engine.SetProgress(func(index, total int, outcome models.Outcome) {
			display.ItemCompleted(index, total, outcome)
		})
		display.RunStarted(len(urls))
		summary = engine.Run(ctx, urls)
		display.RunCompleted(summary, manager.Dir())
	}

	// A cancelled run breaks out before the list is exhausted
	reason := "completed"
	if summary.Total < len(urls) {
		reason = "cancelled"
	}
	logger.LogComponentStop("downloader", reason)

	notifyRunResult(cfg, summary, manager.Dir())

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// runFetchTUI drives the engine under the interactive UI. Start blocks
// until the user quits, so the engine runs in a goroutine and feeds the
// UI through progress events.
func runFetchTUI(ctx context.Context, cancel context.CancelFunc, engine *downloader.Engine, urls []string, dir string) models.Summary {
	terminal := tui.NewTUI(len(urls))

	engine.SetProgress(func(index, total int, outcome models.Outcome) {
		terminal.ItemCompleted(index, total, outcome)
		// Pause holds the engine between items, never mid-download
		for terminal.IsPaused() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
		}
	})

	done := make(chan models.Summary, 1)
	go func() {
		terminal.RunStarted(len(urls))
		summary := engine.Run(ctx, urls)
		terminal.RunCompleted(summary, dir)
		done <- summary
	}()

	if err := terminal.Start(); err != nil {
		logger.WithError(err).Error("terminal UI failed")
	}

	// The UI has exited. If the user quit mid-run, cancel so the engine
	// stops at the next URL instead of finishing the whole list silently.
	cancel()
	return <-done
}

// notifyRunResult reports the run result through the configured channel
func notifyRunResult(cfg *config.Config, summary models.Summary, dir string) {
	if !cfg.Notifications.Enabled || cfg.Notifications.NotificationType == "none" {
		return
	}
	var notifier ui.NotificationSender = ui.NewNotifier(cfg.Notifications.NotificationType == "desktop")

	if summary.Failed > 0 {
		if cfg.Notifications.OnError {
			notifier.SendError("igharvest", fmt.Sprintf("%d of %d downloads failed", summary.Failed, summary.Total))
		}
		return
	}
	if cfg.Notifications.OnComplete {
		notifier.SendSuccess("igharvest", fmt.Sprintf("%d images saved to %s", summary.Successful, dir))
	}
}
