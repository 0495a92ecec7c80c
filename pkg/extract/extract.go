// Package extract pulls image URLs out of offline captures: browser
// network-tab exports and arbitrary text files. It feeds the same
// classifier-gated store that live discovery fills, so a capture file and
// a browser session produce interchangeable URL lists.
package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"igharvest/pkg/classifier"
	"igharvest/pkg/logger"
	"igharvest/pkg/models"
	"igharvest/pkg/urlstore"
)

// cdnURLPattern matches Instagram CDN URLs embedded in free text. The
// trailing class stops at whitespace and the quote and bracket characters
// that prose tends to wrap URLs in.
var cdnURLPattern = regexp.MustCompile(`https?://(?:[^/\s]+\.)?(?:instagram\.(?:com|fbcdn\.net)|fbcdn\.net|cdninstagram\.com)[^\s<>"')]+`)

// FromNetworkExport reads a tab-separated network-tab export and admits the
// URL column. Lines without a second column and URLs outside the CDN family
// are skipped before classification.
func FromNetworkExport(r io.Reader) (*urlstore.Store, error) {
	store := urlstore.New()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}

		url := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(url, "http") {
			continue
		}
		if !classifier.IsCDNURL(url) {
			continue
		}

		store.Admit(models.Candidate{URL: url, Source: models.SourceNetworkExport})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read network export: %w", err)
	}

	return store, nil
}

// FromText scans arbitrary text for CDN URLs. More forgiving than the
// network-export format: URLs can sit anywhere in the content.
func FromText(r io.Reader) (*urlstore.Store, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	store := urlstore.New()
	for _, url := range cdnURLPattern.FindAllString(string(content), -1) {
		store.Admit(models.Candidate{URL: url, Source: models.SourceTextScan})
	}

	return store, nil
}

// Auto tries the network-export format first and falls back to a text scan
// when it yields fewer than minResults URLs. The fallback replaces the
// network result rather than merging with it.
func Auto(r io.Reader, minResults int) (*urlstore.Store, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	store, err := FromNetworkExport(bytes.NewReader(content))
	if err != nil {
		return FromText(bytes.NewReader(content))
	}
	if store.Len() >= minResults {
		return store, nil
	}

	logger.GetLogger().DebugWithFields("network-export extraction came up short, scanning as text", map[string]interface{}{
		"network_urls": store.Len(),
		"min_results":  minResults,
	})

	return FromText(bytes.NewReader(content))
}
