package models

import "time"

// Source identifies the channel a candidate URL was captured from.
type Source string

const (
	SourceDOM           Source = "dom"
	SourceNetworkLog    Source = "network-log"
	SourceNetworkExport Source = "network-export"
	SourceTextScan      Source = "text-scan"
	SourceURLList       Source = "url-list"
)

// Candidate is a URL observed during discovery or extraction, before
// classification has decided whether it is worth keeping.
type Candidate struct {
	URL    string
	Source Source
}

// Outcome records the result of one acquisition attempt cycle.
type Outcome struct {
	URL      string
	Filename string
	Success  bool
	Skipped  bool
	Reason   string
	Attempts int
	Bytes    int64
	Duration time.Duration
}

// Summary aggregates outcomes for a whole acquisition run.
type Summary struct {
	Successful int
	Failed     int
	Skipped    int
	Total      int
}

func (s *Summary) Add(o Outcome) {
	s.Total++
	if o.Success {
		s.Successful++
		if o.Skipped {
			s.Skipped++
		}
		return
	}
	s.Failed++
}

// DiscoveryResult describes one discovery session against a profile.
type DiscoveryResult struct {
	Profile      string
	Scrolls      int
	DOMCount     int
	NetworkCount int
	URLs         int
}
