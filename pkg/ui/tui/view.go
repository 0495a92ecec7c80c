package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"igharvest/pkg/models"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	panelWidth := m.width - 4
	if panelWidth > 72 {
		panelWidth = 72
	}

	sections := []string{
		m.renderTitle(),
		m.renderProgressPanel(panelWidth),
		m.renderStatusLine(),
		m.renderRecentPanel(panelWidth),
		helpStyle.Render("q quit • p pause"),
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderTitle renders the title bar
func (m *Model) renderTitle() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render(" IGHARVEST "),
		subtitleStyle.Render("image acquisition"),
	)
}

// renderProgressPanel renders the overall progress bar and counters
func (m *Model) renderProgressPanel(width int) string {
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.completed) / float64(m.total)
		if percent > 1 {
			percent = 1
		}
	}

	label := GetPercentStyle(percent).Render(
		fmt.Sprintf("%d/%d (%.0f%%)", m.completed, m.total, percent*100))

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"),
			statsValueStyle.Render(formatDuration(time.Since(m.startTime)))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Fetched:"),
			statsValueStyle.Render(FormatBytes(m.bytes))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Speed:"),
			speedStyle.Render(FormatSpeed(m.averageSpeedLocked()))),
	}

	counts := fmt.Sprintf("%s  %s  %s",
		itemFetchedStyle.Render(fmt.Sprintf("✓ %d", m.fetched)),
		itemSkippedStyle.Render(fmt.Sprintf("- %d", m.skipped)),
		itemFailedStyle.Render(fmt.Sprintf("✗ %d", m.failed)),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, m.bar.View(), " ", label),
		strings.Join(stats, "   "),
		counts,
	)

	return panelStyle.Width(width).Render(content)
}

// averageSpeedLocked computes bytes/s; callers hold the mutex already
func (m *Model) averageSpeedLocked() float64 {
	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.bytes) / elapsed
}

// renderStatusLine renders the current activity line
func (m *Model) renderStatusLine() string {
	switch {
	case m.done && m.summary.Failed == 0:
		return successStyle.Render(fmt.Sprintf("  ✓ Run complete, saved to %s", m.outputDir))
	case m.done:
		return warningStyle.Render(fmt.Sprintf("  Run finished with %d failures, saved to %s",
			m.summary.Failed, m.outputDir))
	case m.isPaused:
		return warningStyle.Render("  ⏸ Paused (next fetch held)")
	case m.total == 0:
		return fmt.Sprintf("  %s waiting for URL list", m.spinner.View())
	default:
		next := m.completed + 1
		if next > m.total {
			next = m.total
		}
		return fmt.Sprintf("  %s fetching image %d of %d", m.spinner.View(), next, m.total)
	}
}

// renderRecentPanel renders the most recently finished items
func (m *Model) renderRecentPanel(width int) string {
	if len(m.recent) == 0 {
		return panelStyle.Width(width).Render(
			lipgloss.NewStyle().Foreground(dimWhite).Render("No results yet..."))
	}

	var items []string
	for _, outcome := range m.recent {
		items = append(items, renderOutcome(outcome, width-6))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, items...),
	)
}

// renderOutcome renders one finished item as a single line
func renderOutcome(outcome models.Outcome, width int) string {
	switch {
	case outcome.Success && outcome.Skipped:
		return itemSkippedStyle.Render(truncate("- "+outcome.Filename+" (already saved)", width))
	case outcome.Success:
		line := fmt.Sprintf("✓ %s (%s)", outcome.Filename, FormatBytes(outcome.Bytes))
		return itemFetchedStyle.Render(truncate(line, width))
	default:
		line := fmt.Sprintf("✗ %s: %s", outcome.URL, outcome.Reason)
		return itemFailedStyle.Render(truncate(line, width))
	}
}

// truncate shortens s for single-line display
func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, min, s)
	}
	return fmt.Sprintf("%02d:%02d", min, s)
}
