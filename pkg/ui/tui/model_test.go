package tui

import (
	"testing"

	"igharvest/pkg/models"
)

func TestModel(t *testing.T) {
	model := NewModel(3)

	// One of each outcome kind
	model.RecordOutcome(models.Outcome{
		URL:      "https://cdn/100_200_300_n.jpg",
		Filename: "0001_100_200_300_n.jpg",
		Success:  true,
		Bytes:    1024,
	})
	model.RecordOutcome(models.Outcome{
		Filename: "0002_100_200_301_n.jpg",
		Success:  true,
		Skipped:  true,
	})
	model.RecordOutcome(models.Outcome{
		URL:     "https://cdn/100_200_302_n.jpg",
		Success: false,
		Reason:  "server returned status 404",
	})

	if model.completed != 3 {
		t.Errorf("Expected 3 completed, got %d", model.completed)
	}
	if model.fetched != 1 || model.skipped != 1 || model.failed != 1 {
		t.Errorf("Expected 1/1/1 fetched/skipped/failed, got %d/%d/%d",
			model.fetched, model.skipped, model.failed)
	}
	if model.bytes != 1024 {
		t.Errorf("Expected 1024 bytes, got %d", model.bytes)
	}
	if model.Percent() != 1.0 {
		t.Errorf("Expected 100%% completion, got %f", model.Percent())
	}

	// Finishing records the summary for the completion panel
	model.Finish(models.Summary{Successful: 2, Failed: 1, Skipped: 1, Total: 3}, "/tmp/images")
	if !model.done {
		t.Error("Expected model to be marked done")
	}
	if model.summary.Failed != 1 {
		t.Errorf("Expected 1 failure in summary, got %d", model.summary.Failed)
	}
	if model.outputDir != "/tmp/images" {
		t.Errorf("Expected output dir recorded, got %q", model.outputDir)
	}
}

func TestModelRecentListBounded(t *testing.T) {
	model := NewModel(100)

	for i := 0; i < maxRecent*3; i++ {
		model.RecordOutcome(models.Outcome{Success: true, Bytes: 1})
	}

	if len(model.recent) != maxRecent {
		t.Errorf("Expected recent list capped at %d, got %d", maxRecent, len(model.recent))
	}
}

func TestModelPercentZeroTotal(t *testing.T) {
	model := NewModel(0)
	if model.Percent() != 0 {
		t.Errorf("Expected 0%% for empty run, got %f", model.Percent())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, test := range tests {
		result := FormatBytes(test.bytes)
		if result != test.expected {
			t.Errorf("FormatBytes(%d) = %s, expected %s", test.bytes, result, test.expected)
		}
	}
}

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		speed    float64
		expected string
	}{
		{1024, "1.0 KB/s"},
		{1024 * 1024, "1.0 MB/s"},
		{512 * 1024, "512.0 KB/s"},
	}

	for _, test := range tests {
		result := FormatSpeed(test.speed)
		if result != test.expected {
			t.Errorf("FormatSpeed(%f) = %s, expected %s", test.speed, result, test.expected)
		}
	}
}
