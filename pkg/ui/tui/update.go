package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"igharvest/pkg/models"
)

// Message types for the TUI

// RunStartMsg announces the item count for the run
type RunStartMsg struct {
	Total int
}

// ItemDoneMsg reports one finished item
type ItemDoneMsg struct {
	Index   int
	Total   int
	Outcome models.Outcome
}

// RunDoneMsg carries the final summary once the run is over
type RunDoneMsg struct {
	Summary models.Summary
	Dir     string
}

// TickMsg is sent periodically to refresh time-based stats
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case RunStartMsg:
		m.SetTotal(msg.Total)
		return m, nil

	case ItemDoneMsg:
		if msg.Total > 0 {
			m.SetTotal(msg.Total)
		}
		m.RecordOutcome(msg.Outcome)
		return m, m.bar.SetPercent(m.Percent())

	case RunDoneMsg:
		m.Finish(msg.Summary, msg.Dir)
		return m, m.bar.SetPercent(1)
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "p", "P":
		m.mu.Lock()
		m.isPaused = !m.isPaused
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Helper functions for external use

// SendRunStart creates a message announcing the run size
func SendRunStart(total int) tea.Msg {
	return RunStartMsg{Total: total}
}

// SendItemDone creates a message for one finished item
func SendItemDone(index, total int, outcome models.Outcome) tea.Msg {
	return ItemDoneMsg{
		Index:   index,
		Total:   total,
		Outcome: outcome,
	}
}

// SendRunDone creates the end-of-run message
func SendRunDone(summary models.Summary, dir string) tea.Msg {
	return RunDoneMsg{
		Summary: summary,
		Dir:     dir,
	}
}
