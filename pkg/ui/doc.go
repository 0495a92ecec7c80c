// Package ui provides the terminal output layer: colored print helpers,
// the line-based fetch display, the discovery scan tracker, and desktop
// notifications.
//
// All output respects two global switches set from the CLI flags:
// SetQuietMode suppresses everything except errors, and SetNoColor strips
// ANSI codes. The interactive alternative lives in pkg/ui/tui; both
// satisfy the FetchUI interface so commands can swap them freely.
//
//	display := ui.NewFetchDisplay()
//	display.RunStarted(len(urls))
//	// per URL: display.ItemCompleted(i, total, outcome)
//	display.RunCompleted(summary, outputDir)
package ui
