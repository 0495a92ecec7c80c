package tui_test

import (
	"fmt"
	"time"

	"igharvest/pkg/models"
	"igharvest/pkg/ui/tui"
)

func ExampleTUI() {
	urls := []string{
		"https://scontent.cdninstagram.com/v/t51.82787-15/100_200_300_n.jpg",
		"https://scontent.cdninstagram.com/v/t51.82787-15/100_200_301_n.jpg",
		"https://scontent.cdninstagram.com/v/t51.82787-15/100_200_302_n.jpg",
	}

	terminal := tui.NewTUI(len(urls))

	// Drive the run from a goroutine; Start blocks on the UI
	go func() {
		terminal.RunStarted(len(urls))

		var summary models.Summary
		for i, url := range urls {
			time.Sleep(300 * time.Millisecond)

			outcome := models.Outcome{URL: url, Success: i%3 != 2}
			if outcome.Success {
				outcome.Filename = fmt.Sprintf("%04d_photo.jpg", i+1)
				outcome.Bytes = 256 * 1024
			} else {
				outcome.Reason = "server returned status 404"
			}
			summary.Add(outcome)
			terminal.ItemCompleted(i+1, len(urls), outcome)
		}

		terminal.RunCompleted(summary, "./images")
		time.Sleep(2 * time.Second)
		terminal.Stop()
	}()

	if err := terminal.Start(); err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}
}
