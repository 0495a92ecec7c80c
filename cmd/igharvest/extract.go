package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"igharvest/pkg/config"
	"igharvest/pkg/extract"
	"igharvest/pkg/logger"
	"igharvest/pkg/ui"
	"igharvest/pkg/urlstore"
)

var (
	extractMethod   string
	extractURLsFile string
)

var extractCmd = &cobra.Command{
	Use:   "extract <input-file>",
	Short: "Pull image URLs out of a saved network export or text file",
	Long: `Extract recovers full-size image URLs without opening a browser. It
reads a file you already have, ideally a network export saved from the
browser devtools ("Save all as HAR" converted to tab-separated values,
or any copy of the request table), but any text containing Instagram
CDN URLs works.

Methods:
  network   parse tab-separated network export rows
  text      scan the whole file for CDN URLs
  auto      try network first, fall back to text when it finds too little

The result is written to the URL list file, ready for 'igharvest fetch'.`,
	Example: `  # Let the tool pick the method
  igharvest extract export.txt

  # Force a raw text scan of a saved page
  igharvest extract saved_page.html --method text

  # Write to a specific URL list
  igharvest extract export.txt -o lists/from-export.txt`,
	Args: cobra.ExactArgs(1),
	Run:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractMethod, "method", "m", "auto", "extraction method (network, text, auto)")
	extractCmd.Flags().StringVarP(&extractURLsFile, "urls-file", "o", "", "file the URL list is written to")
}

func runExtract(cmd *cobra.Command, args []string) {
	inputPath := args[0]

	flags := make(map[string]interface{})
	if extractURLsFile != "" {
		flags["urls-file"] = extractURLsFile
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

	f, err := os.Open(inputPath)
	if err != nil {
		ui.PrintError("Failed to open input file", err.Error())
		os.Exit(1)
	}
	defer f.Close()

	ui.PrintInfo("Input", inputPath)

	var store *urlstore.Store
	switch extractMethod {
	case "network":
		store, err = extract.FromNetworkExport(f)
	case "text":
		store, err = extract.FromText(f)
	case "auto":
		store, err = extract.Auto(f, cfg.Extract.MinResults)
	default:
		ui.PrintError("Unknown extraction method", extractMethod)
		os.Exit(1)
	}
	if err != nil {
		ui.PrintError("Extraction failed", err.Error())
		os.Exit(1)
	}

	if store.Len() == 0 {
		ui.PrintWarning("No image URLs found", "the input does not contain recognizable CDN URLs")
		return
	}

	if err := store.Persist(cfg.Output.URLsFile); err != nil {
		ui.PrintError("Failed to write URL list", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Found %d unique full-size image URLs", store.Len()))

	if !quiet {
		urls := store.All()
		sample := len(urls)
		if sample > 5 {
			sample = 5
		}
		ui.PrintHighlight("Sample:")
		for _, u := range urls[:sample] {
			fmt.Printf("  %s\n", ui.Dim(u))
		}
	}

	ui.PrintInfo("URL list", cfg.Output.URLsFile)
	ui.PrintInfo("Next step", "igharvest fetch "+cfg.Output.URLsFile)
}
