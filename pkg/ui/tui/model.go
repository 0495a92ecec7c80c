package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"igharvest/pkg/models"
)

// maxRecent bounds the finished-items list kept for display
const maxRecent = 8

// Model is the bubbletea model for a serial acquisition run
type Model struct {
	// UI components
	spinner spinner.Model
	bar     progress.Model

	// Run state
	total     int
	completed int
	fetched   int
	skipped   int
	failed    int
	bytes     int64
	recent    []models.Outcome

	// Final summary, set once the run is over
	done      bool
	summary   models.Summary
	outputDir string

	// UI state
	startTime time.Time
	width     int
	height    int
	isPaused  bool

	// Mutex for thread safety
	mu sync.RWMutex
}

// NewModel creates a TUI model expecting total items
func NewModel(total int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:   s,
		bar:       bar,
		total:     total,
		startTime: time.Now(),
	}
}

// Init starts the spinner and the stats refresh tick
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// SetTotal resets the expected item count
func (m *Model) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
}

// RecordOutcome folds one finished item into the run state
func (m *Model) RecordOutcome(outcome models.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.bytes += outcome.Bytes

	switch {
	case outcome.Success && outcome.Skipped:
		m.skipped++
	case outcome.Success:
		m.fetched++
	default:
		m.failed++
	}

	m.recent = append(m.recent, outcome)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}
}

// Finish records the final summary for the completion panel
func (m *Model) Finish(summary models.Summary, dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.done = true
	m.summary = summary
	m.outputDir = dir
}

// Percent returns overall completion in [0, 1]
func (m *Model) Percent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.total == 0 {
		return 0
	}
	percent := float64(m.completed) / float64(m.total)
	if percent > 1 {
		percent = 1
	}
	return percent
}

// AverageSpeed returns bytes per second across the whole session
func (m *Model) AverageSpeed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.bytes) / elapsed
}

// FormatBytes formats bytes to human readable format
func FormatBytes(bytes int64) string {
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

// FormatSpeed formats speed in bytes per second
func FormatSpeed(bytesPerSecond float64) string {
	return fmt.Sprintf("%s/s", FormatBytes(int64(bytesPerSecond)))
}
