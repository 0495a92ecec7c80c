// Package urlstore holds the set of accepted image URLs between discovery
// and acquisition. Admission runs every candidate through the classifier,
// so the store never contains a URL that fails classification.
package urlstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"igharvest/pkg/classifier"
	"igharvest/pkg/models"
)

// Store is a deduplicating set of full-size image URLs. It is used by a
// single discovery run at a time; there are no concurrent writers.
type Store struct {
	urls    map[string]models.Source
	rejects int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		urls: make(map[string]models.Source),
	}
}

// Admit offers a candidate to the store. It returns true only when the
// candidate passes classification and was not already present. The URL is
// keyed after trailing-punctuation trimming.
func (s *Store) Admit(c models.Candidate) bool {
	url := classifier.TrimTrailingPunctuation(strings.TrimSpace(c.URL))
	if url == "" {
		return false
	}

	if !classifier.IsFullSize(url) {
		s.rejects++
		return false
	}

	if _, exists := s.urls[url]; exists {
		return false
	}

	s.urls[url] = c.Source
	return true
}

// Len returns the number of stored URLs.
func (s *Store) Len() int {
	return len(s.urls)
}

// Rejected returns how many candidates failed classification.
func (s *Store) Rejected() int {
	return s.rejects
}

// All returns the stored URLs sorted lexicographically. Sorting happens at
// read time; insertion order is not significant.
func (s *Store) All() []string {
	urls := make([]string, 0, len(s.urls))
	for url := range s.urls {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Source returns the provenance recorded for a stored URL.
func (s *Store) Source(url string) (models.Source, bool) {
	src, ok := s.urls[url]
	return src, ok
}

// Persist writes the sorted URL list to path, one URL per line with a
// trailing newline. The file is replaced atomically; repeated persists to
// the same path overwrite rather than append.
func (s *Store) Persist(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for url list: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".urls-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, url := range s.All() {
		if _, err := fmt.Fprintln(w, url); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to write url list: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush url list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move url list into place: %w", err)
	}

	return nil
}

// Load reads a persisted URL list back into the store. Blank lines and
// lines that are not http(s) URLs are skipped; every line is re-admitted
// through the classifier so a hand-edited file cannot smuggle in noise.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open url list: %w", err)
	}
	defer f.Close()

	s := New()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "http") {
			continue
		}
		s.Admit(models.Candidate{URL: line, Source: models.SourceURLList})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url list: %w", err)
	}

	return s, nil
}
