package downloader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"igharvest/pkg/config"
	"igharvest/pkg/errors"
	"igharvest/pkg/instagram"
	"igharvest/pkg/logger"
	"igharvest/pkg/models"
	"igharvest/pkg/ratelimit"
	"igharvest/pkg/storage"
)

// mockFetcher returns canned results per URL and records every request
type mockFetcher struct {
	handler  func(url string) (*http.Response, error)
	requests []string
	mu       sync.Mutex
}

func (m *mockFetcher) Fetch(url string) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, url)
	m.mu.Unlock()
	return m.handler(url)
}

func (m *mockFetcher) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockStorage is an in-memory ImageStorage
type mockStorage struct {
	saved   map[string][]byte
	saveErr error
	mu      sync.Mutex
}

func newMockStorage() *mockStorage {
	return &mockStorage{saved: make(map[string][]byte)}
}

func (m *mockStorage) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[name]
	return ok
}

func (m *mockStorage) Save(name string, r io.Reader) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	m.saved[name] = data
	m.mu.Unlock()
	return int64(len(data)), nil
}

func (m *mockStorage) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func imageResponse(data string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "image/jpeg")
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(data)),
	}
}

func testDownloadConfig() config.DownloadConfig {
	return config.DownloadConfig{
		RequestTimeout: 5 * time.Second,
		Delay:          time.Millisecond,
		MaxRetries:     3,
		RetryStatuses:  []int{429, 500, 502, 503, 504},
		BackoffFactor:  0.01,
		IndexPrefix:    true,
	}
}

func TestEngineDownloadsInOrder(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return imageResponse("data for " + url), nil
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	urls := []string{
		"https://cdn.example.com/first.jpg",
		"https://cdn.example.com/second.jpg",
		"https://cdn.example.com/third.jpg",
	}

	summary := engine.Run(context.Background(), urls)

	if summary.Successful != 3 || summary.Failed != 0 || summary.Total != 3 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if fetcher.requestCount() != 3 {
		t.Errorf("Expected 3 requests, got %d", fetcher.requestCount())
	}
	for i, url := range urls {
		if fetcher.requests[i] != url {
			t.Errorf("Request %d out of order: got %s, want %s", i, fetcher.requests[i], url)
		}
	}

	// Index prefixes follow list order
	for i, want := range []string{"0001_first.jpg", "0002_second.jpg", "0003_third.jpg"} {
		if !store.Exists(want) {
			t.Errorf("Expected %s to be saved (url %d)", want, i+1)
		}
	}
}

func TestEngineSkipsExistingFiles(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return imageResponse("fresh"), nil
		},
	}
	store := newMockStorage()
	store.saved["0001_existing.jpg"] = []byte("old")

	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	summary := engine.Run(context.Background(), []string{
		"https://cdn.example.com/existing.jpg",
		"https://cdn.example.com/new.jpg",
	})

	if summary.Successful != 2 {
		t.Errorf("Expected 2 successful, got %d", summary.Successful)
	}
	if summary.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", summary.Skipped)
	}
	// The existing file never hit the network
	if fetcher.requestCount() != 1 {
		t.Errorf("Expected 1 request, got %d", fetcher.requestCount())
	}
	if string(store.saved["0001_existing.jpg"]) != "old" {
		t.Error("Existing file should not have been overwritten")
	}
}

func TestEngineRetriesRetryableStatus(t *testing.T) {
	attempts := 0
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.FromStatusCode(503, "server returned status 503")
			}
			return imageResponse("finally"), nil
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	summary := engine.Run(context.Background(), []string{"https://cdn.example.com/flaky.jpg"})

	if summary.Successful != 1 {
		t.Errorf("Expected success after retries, got %+v", summary)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestEngineExhaustsRetries(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return nil, errors.FromStatusCode(503, "server returned status 503")
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	summary := engine.Run(context.Background(), []string{"https://cdn.example.com/down.jpg"})

	if summary.Failed != 1 {
		t.Errorf("Expected 1 failure, got %+v", summary)
	}
	// max_retries 3 means 4 attempts total
	if fetcher.requestCount() != 4 {
		t.Errorf("Expected 4 attempts, got %d", fetcher.requestCount())
	}
}

func TestEngineDoesNotRetryNotFound(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return nil, errors.FromStatusCode(404, "server returned status 404")
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	summary := engine.Run(context.Background(), []string{"https://cdn.example.com/gone.jpg"})

	if summary.Failed != 1 {
		t.Errorf("Expected 1 failure, got %+v", summary)
	}
	if fetcher.requestCount() != 1 {
		t.Errorf("404 should not be retried, got %d attempts", fetcher.requestCount())
	}
}

func TestEngineRejectsNonImageContent(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			header := make(http.Header)
			header.Set("Content-Type", "text/html")
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     header,
				Body:       io.NopCloser(strings.NewReader("<html>login</html>")),
			}, nil
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	var reasons []string
	engine.SetProgress(func(index, total int, outcome models.Outcome) {
		reasons = append(reasons, outcome.Reason)
	})

	summary := engine.Run(context.Background(), []string{"https://cdn.example.com/trap.jpg"})

	if summary.Failed != 1 {
		t.Errorf("Expected 1 failure, got %+v", summary)
	}
	// Wrong content type is permanent, not worth a retry
	if fetcher.requestCount() != 1 {
		t.Errorf("Expected 1 attempt, got %d", fetcher.requestCount())
	}
	if store.savedCount() != 0 {
		t.Error("Non-image response should not be saved")
	}
	if len(reasons) != 1 || !strings.Contains(reasons[0], "not an image") {
		t.Errorf("Expected a not-an-image reason, got %v", reasons)
	}
}

func TestEngineFailureDoesNotAbortBatch(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			if strings.Contains(url, "bad") {
				return nil, errors.FromStatusCode(404, "server returned status 404")
			}
			return imageResponse("good bytes"), nil
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	summary := engine.Run(context.Background(), []string{
		"https://cdn.example.com/bad.jpg",
		"https://cdn.example.com/good.jpg",
	})

	if summary.Successful != 1 || summary.Failed != 1 || summary.Total != 2 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if !store.Exists("0002_good.jpg") {
		t.Error("Second URL should have been downloaded despite first failing")
	}
}

func TestEngineProgressCallback(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return imageResponse("x"), nil
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	type call struct {
		index, total int
		success      bool
	}
	var calls []call
	engine.SetProgress(func(index, total int, outcome models.Outcome) {
		calls = append(calls, call{index, total, outcome.Success})
	})

	engine.Run(context.Background(), []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
	})

	if len(calls) != 2 {
		t.Fatalf("Expected 2 progress calls, got %d", len(calls))
	}
	for i, c := range calls {
		if c.index != i+1 || c.total != 2 || !c.success {
			t.Errorf("Unexpected progress call %d: %+v", i, c)
		}
	}
}

func TestEnginePacing(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return imageResponse("x"), nil
		},
	}

	cfg := testDownloadConfig()
	cfg.Delay = 50 * time.Millisecond

	urls := []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
		"https://cdn.example.com/c.jpg",
	}

	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, cfg, logger.NewNopLogger())

	start := time.Now()
	engine.Run(context.Background(), urls)
	elapsed := time.Since(start)

	// Two inter-request delays between three fetches
	if elapsed < 100*time.Millisecond {
		t.Errorf("Expected pacing of at least 100ms, took %v", elapsed)
	}

	// A second run skips everything and owes no delays
	engine2 := NewEngine(fetcher, store, nil, cfg, logger.NewNopLogger())
	start = time.Now()
	summary := engine2.Run(context.Background(), urls)
	elapsed = time.Since(start)

	if summary.Skipped != 3 {
		t.Errorf("Expected all skips on second run, got %+v", summary)
	}
	if elapsed > 50*time.Millisecond {
		t.Errorf("Skips should bypass pacing, took %v", elapsed)
	}
}

func TestEngineEndToEnd(t *testing.T) {
	served := []byte("jpeg bytes from the server")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.WriteHeader(http.StatusOK)
			w.Write(served)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tempDir := t.TempDir()
	manager, err := storage.NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage manager: %v", err)
	}

	cfg := testDownloadConfig()
	cfg.IndexPrefix = false

	client := instagram.NewClient(5*time.Second, "", logger.NewNopLogger())
	engine := NewEngine(client, manager, ratelimit.NewFixedDelay(time.Millisecond), cfg, logger.NewNopLogger())

	urls := []string{
		server.URL + "/photo.jpg",
		server.URL + "/missing.jpg",
	}

	summary := engine.Run(context.Background(), urls)

	if summary.Successful != 1 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	saved, err := os.ReadFile(filepath.Join(tempDir, "photo.jpg"))
	if err != nil {
		t.Fatalf("Expected photo.jpg on disk: %v", err)
	}
	if string(saved) != string(served) {
		t.Error("Saved bytes differ from served bytes")
	}

	// Second run resumes: the saved file is skipped without a request
	summary = engine.Run(context.Background(), urls)
	if summary.Skipped != 1 || summary.Failed != 1 {
		t.Errorf("Unexpected resume summary: %+v", summary)
	}
}

func TestEngineSaveFailure(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return imageResponse("x"), nil
		},
	}
	store := newMockStorage()
	store.saveErr = os.ErrPermission

	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	summary := engine.Run(context.Background(), []string{"https://cdn.example.com/a.jpg"})

	if summary.Failed != 1 {
		t.Errorf("Expected save failure, got %+v", summary)
	}
	// Local disk problems are not worth re-fetching for
	if fetcher.requestCount() != 1 {
		t.Errorf("Expected 1 attempt, got %d", fetcher.requestCount())
	}
}

func TestEngineCancelledContext(t *testing.T) {
	fetcher := &mockFetcher{
		handler: func(url string) (*http.Response, error) {
			return imageResponse("x"), nil
		},
	}
	store := newMockStorage()
	engine := NewEngine(fetcher, store, nil, testDownloadConfig(), logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := engine.Run(ctx, []string{"https://cdn.example.com/a.jpg"})
	if summary.Total != 0 {
		t.Errorf("Cancelled run should process nothing, got %+v", summary)
	}
	if fetcher.requestCount() != 0 {
		t.Errorf("Cancelled run should issue no requests, got %d", fetcher.requestCount())
	}
}
