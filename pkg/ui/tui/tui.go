package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"igharvest/pkg/models"
)

// TUI wraps the bubbletea program and exposes the acquisition progress
// surface the fetch command drives
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI expecting total items
func NewTUI(total int) *TUI {
	model := NewModel(total)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start runs the TUI until the user quits. Blocks; run the acquisition in
// a separate goroutine.
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// RunStarted announces the item count
func (t *TUI) RunStarted(total int) {
	t.Send(SendRunStart(total))
}

// ItemCompleted reports one finished item
func (t *TUI) ItemCompleted(index, total int, outcome models.Outcome) {
	t.Send(SendItemDone(index, total, outcome))
}

// RunCompleted reports the final summary
func (t *TUI) RunCompleted(summary models.Summary, dir string) {
	t.Send(SendRunDone(summary, dir))
}

// IsPaused returns whether the user paused the run
func (t *TUI) IsPaused() bool {
	t.model.mu.RLock()
	defer t.model.mu.RUnlock()
	return t.model.isPaused
}
