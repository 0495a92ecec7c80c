package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"igharvest/pkg/models"
)

// FetchUI receives acquisition progress events. Implemented both by the
// plain line-based FetchDisplay here and by the interactive TUI.
// ItemCompleted indices are 1-based.
type FetchUI interface {
	RunStarted(total int)
	ItemCompleted(index, total int, outcome models.Outcome)
	RunCompleted(summary models.Summary, dir string)
	IsPaused() bool
}

// FetchDisplay prints one status line per fetched URL and a summary block
// at the end of the run. It is the non-interactive counterpart of the TUI.
type FetchDisplay struct {
	mu        sync.Mutex
	total     int
	bytes     int64
	startTime time.Time
}

// NewFetchDisplay creates a fetch display
func NewFetchDisplay() *FetchDisplay {
	return &FetchDisplay{
		startTime: time.Now(),
	}
}

// RunStarted announces the run
func (d *FetchDisplay) RunStarted(total int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.total = total
	d.startTime = time.Now()

	if quietMode {
		return
	}
	fmt.Printf("Fetching %d images...\n\n", total)
}

// ItemCompleted prints the status line for one URL
func (d *FetchDisplay) ItemCompleted(index, total int, outcome models.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bytes += outcome.Bytes

	if quietMode {
		return
	}

	prefix := fmt.Sprintf("[%*d/%d]", digits(total), index, total)

	switch {
	case outcome.Success && outcome.Skipped:
		fmt.Printf("%s %s %s %s\n", prefix, Dim("-"), outcome.Filename, Dim("(already saved)"))
	case outcome.Success:
		fmt.Printf("%s %s %s %s\n", prefix, Green("✓"), outcome.Filename, Dim(fmt.Sprintf("(%s)", formatBytes(outcome.Bytes))))
	default:
		fmt.Printf("%s %s %s %s\n", prefix, Red("✗"), truncate(outcome.URL, 60), Red(outcome.Reason))
	}
}

// RunCompleted prints the summary block
func (d *FetchDisplay) RunCompleted(summary models.Summary, dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if quietMode {
		return
	}

	elapsed := time.Since(d.startTime)

	width := TerminalWidth()
	if width > 50 {
		width = 50
	}
	fmt.Printf("\n%s\n", Dim(strings.Repeat("=", width)))

	if summary.Failed == 0 {
		fmt.Println(Green("Fetch complete!"))
	} else {
		fmt.Println(Yellow("Fetch finished with failures"))
	}

	fmt.Printf("  %s %d fetched", Dim("•"), summary.Successful-summary.Skipped)
	if summary.Skipped > 0 {
		fmt.Printf(", %d already saved", summary.Skipped)
	}
	if summary.Failed > 0 {
		fmt.Printf(", %s", Red(fmt.Sprintf("%d failed", summary.Failed)))
	}
	fmt.Printf(" of %d\n", summary.Total)

	if d.bytes > 0 {
		fmt.Printf("  %s %s in %s\n", Dim("•"), formatBytes(d.bytes), formatDuration(elapsed))
	}
	fmt.Printf("  %s saved to %s\n", Dim("•"), dir)
}

// IsPaused reports false; the plain display has no pause control
func (d *FetchDisplay) IsPaused() bool {
	return false
}

// digits returns the printed width of n, for aligning index columns
func digits(n int) int {
	return len(fmt.Sprintf("%d", n))
}

// truncate shortens s for single-line display
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatBytes formats bytes in a human-readable way
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
