package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// ScanTracker keeps track of discovery scroll progress
type ScanTracker struct {
	Scrolls    int
	PageHeight int
	maxScrolls int
	StartTime  time.Time
}

// NewScanTracker creates a tracker bounded by the configured scroll cap
func NewScanTracker(maxScrolls int) *ScanTracker {
	if maxScrolls <= 0 {
		maxScrolls = 1
	}
	return &ScanTracker{
		maxScrolls: maxScrolls,
		StartTime:  time.Now(),
	}
}

// RecordScroll notes one completed scroll and the page height it reached
func (st *ScanTracker) RecordScroll(height int) {
	st.Scrolls++
	st.PageHeight = height
}

// GetScrollProgress returns a formatted progress bar against the scroll cap
func (st *ScanTracker) GetScrollProgress() string {
	const width = 20
	progress := float64(st.Scrolls) / float64(st.maxScrolls)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Scrolls, st.maxScrolls)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *ScanTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// PrintProgress prints the current scan status on a single updating line
func (st *ScanTracker) PrintProgress() {
	if quietMode {
		return
	}
	fmt.Printf("\r%s %s %s",
		Magenta("[SCANNING]"),
		st.GetScrollProgress(),
		Dim(fmt.Sprintf("%dpx", st.PageHeight)))
}

// Finish terminates the updating line and prints the scroll total
func (st *ScanTracker) Finish() {
	if quietMode {
		return
	}
	fmt.Printf("\n%s Scrolled %d times in %s\n",
		Green("[DONE]"),
		st.Scrolls,
		formatDuration(st.GetElapsedTime()))
}
