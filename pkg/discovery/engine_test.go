package discovery

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"igharvest/pkg/browser"
	"igharvest/pkg/config"
	errs "igharvest/pkg/errors"
	"igharvest/pkg/models"
	"igharvest/pkg/urlstore"
)

// fakeSession scripts a browser session: page heights are served from a
// queue, repeating the last value once exhausted.
type fakeSession struct {
	pageSource  string
	heights     []int
	heightIdx   int
	elements    []browser.Element
	network     []browser.NetworkEntry
	networkErr  error
	navigateErr error
	scriptErr   error

	navigated   []string
	scrollCalls int
	nudgeCalls  int
	closed      int
}

func (s *fakeSession) Navigate(url string) error {
	s.navigated = append(s.navigated, url)
	return s.navigateErr
}

func (s *fakeSession) PageSource() (string, error) {
	return s.pageSource, nil
}

func (s *fakeSession) ExecuteScript(js string, res interface{}) error {
	if s.scriptErr != nil {
		return s.scriptErr
	}
	switch js {
	case scrollToBottomJS:
		s.scrollCalls++
	case scrollNudgeJS:
		s.nudgeCalls++
	case pageHeightJS:
		h := 0
		if len(s.heights) > 0 {
			h = s.heights[len(s.heights)-1]
			if s.heightIdx < len(s.heights) {
				h = s.heights[s.heightIdx]
				s.heightIdx++
			}
		}
		if p, ok := res.(*int); ok {
			*p = h
		}
	}
	return nil
}

func (s *fakeSession) FindElements(selector string) ([]browser.Element, error) {
	return s.elements, nil
}

func (s *fakeSession) NetworkLog() ([]browser.NetworkEntry, error) {
	if s.networkErr != nil {
		return nil, s.networkErr
	}
	return s.network, nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeElement struct {
	attrs map[string]string
}

func (e fakeElement) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func testConfig() *config.Config {
	return &config.Config{
		Browser: config.BrowserConfig{
			PageLoadWait: time.Millisecond,
		},
		Discovery: config.DiscoveryConfig{
			MaxScrolls:  50,
			ScrollDelay: time.Millisecond,
			NudgeDelay:  time.Millisecond,
		},
	}
}

const (
	postURL1 = "https://scontent.cdninstagram.com/v/t51.82787-15/100_200_300_n.jpg"
	postURL2 = "https://scontent.cdninstagram.com/v/t51.82787-15/100_200_301_n.jpg"
	postURL3 = "https://scontent.cdninstagram.com/v/t51.82787-15/100_200_302_n.jpg"
	postURL4 = "https://scontent.cdninstagram.com/v/t51.82787-15/100_200_303_n.jpg"
	avatar   = "https://scontent.cdninstagram.com/v/t51.2885-19/profile.jpg"
)

func TestRunStabilizesImmediately(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		heights:    []int{500},
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Scrolls != 0 {
		t.Errorf("expected 0 scrolls for a static page, got %d", result.Scrolls)
	}
	if session.scrollCalls != 2 {
		t.Errorf("expected 2 bottom-scroll commands (initial plus nudge retry), got %d", session.scrollCalls)
	}
	if session.nudgeCalls != 1 {
		t.Errorf("expected exactly one nudge before giving up, got %d", session.nudgeCalls)
	}
	if session.closed != 1 {
		t.Errorf("expected session closed once, got %d", session.closed)
	}
	if len(session.navigated) != 1 || session.navigated[0] != "https://www.instagram.com/naturephotos/" {
		t.Errorf("unexpected navigation: %v", session.navigated)
	}
}

func TestRunScrollsUntilHeightStops(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		// Initial read, two growth reads, then the page stalls.
		heights: []int{1000, 2000, 3000, 3000, 3000},
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Scrolls != 2 {
		t.Errorf("expected 2 scrolls, got %d", result.Scrolls)
	}
	if session.nudgeCalls != 1 {
		t.Errorf("expected one nudge at the stall, got %d", session.nudgeCalls)
	}
}

func TestRunNudgeRevivesGrowth(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		// Stall at 2000, nudge shakes loose more content, then a real stall.
		heights: []int{1000, 2000, 2000, 3000, 4000, 4000, 4000},
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	var reported []int
	engine.SetProgress(func(scrolls, height int) {
		reported = append(reported, height)
	})

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Scrolls != 3 {
		t.Errorf("expected 3 scrolls, got %d", result.Scrolls)
	}
	if session.nudgeCalls != 2 {
		t.Errorf("expected a nudge per stall, got %d", session.nudgeCalls)
	}
	if len(reported) != 3 || reported[0] != 2000 || reported[1] != 3000 || reported[2] != 4000 {
		t.Errorf("expected progress callbacks for heights 2000, 3000, 4000, got %v", reported)
	}
}

func TestRunScrollCap(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		heights:    []int{100, 200, 300, 400, 500, 600, 700},
	}
	cfg := testConfig()
	cfg.Discovery.MaxScrolls = 3
	store := urlstore.New()
	engine := New(session, store, cfg, nil)

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("scroll cap is a soft bound, not an error: %v", err)
	}

	if result.Scrolls != 3 {
		t.Errorf("expected scrolling to stop at the cap of 3, got %d", result.Scrolls)
	}
}

func TestRunUnavailableProfile(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html><body>Sorry, this page isn't available.</body></html>",
		heights:    []int{500},
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	_, err := engine.Run(context.Background(), "https://www.instagram.com/doesnotexist/")
	if err == nil {
		t.Fatal("expected an error for an unavailable profile")
	}

	var typed *errs.Error
	if !stderrors.As(err, &typed) || typed.Type != errs.ErrorTypeUnavailable {
		t.Errorf("expected an unavailable error, got %v", err)
	}
	if session.scrollCalls != 0 {
		t.Errorf("expected no scrolling after the abort, got %d scrolls", session.scrollCalls)
	}
	if store.Len() != 0 {
		t.Errorf("expected no URLs admitted, got %d", store.Len())
	}
	if session.closed != 1 {
		t.Errorf("expected session released despite the abort, got %d closes", session.closed)
	}
}

func TestRunNavigateError(t *testing.T) {
	session := &fakeSession{
		pageSource:  "<html></html>",
		heights:     []int{500},
		navigateErr: stderrors.New("chrome went away"),
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	_, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err == nil {
		t.Fatal("expected navigation error to propagate")
	}
	if session.closed != 1 {
		t.Errorf("expected session released, got %d closes", session.closed)
	}
}

func TestRunScrollErrorAborts(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		heights:    []int{500},
		scriptErr:  stderrors.New("tab crashed"),
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	_, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err == nil {
		t.Fatal("expected a mid-scroll failure to abort the run")
	}
	if !strings.Contains(err.Error(), "aborted mid-scroll") {
		t.Errorf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected no extraction after a scroll failure, got %d URLs", store.Len())
	}
	if session.closed != 1 {
		t.Errorf("expected session released despite the failure, got %d closes", session.closed)
	}
}

func TestRunCancelled(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		heights:    []int{1000, 2000, 3000, 4000, 5000, 6000},
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	engine.SetProgress(func(scrolls, height int) {
		if scrolls == 2 {
			cancel()
		}
	})

	_, err := engine.Run(ctx, "https://www.instagram.com/naturephotos/")
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if session.closed != 1 {
		t.Errorf("expected session released after cancellation, got %d closes", session.closed)
	}
}

func TestRunCollectsBothChannels(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		heights:    []int{500},
		elements: []browser.Element{
			fakeElement{attrs: map[string]string{
				"src":    postURL1,
				"srcset": postURL2 + " 640w, " + postURL3 + " 1080w",
			}},
			fakeElement{attrs: map[string]string{"src": avatar}},
		},
		network: []browser.NetworkEntry{
			{URL: postURL4, MimeType: "image/jpeg"},
			{URL: "https://www.instagram.com/naturephotos/", MimeType: "text/html"},
			{URL: postURL1, MimeType: "image/webp"},
		},
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DOMCount != 3 {
		t.Errorf("expected 3 URLs from the DOM channel, got %d", result.DOMCount)
	}
	// The HTML page fails classification and the duplicate is already stored.
	if result.NetworkCount != 1 {
		t.Errorf("expected 1 new URL from the network channel, got %d", result.NetworkCount)
	}
	if result.URLs != 4 {
		t.Errorf("expected 4 stored URLs, got %d", result.URLs)
	}

	if src, ok := store.Source(postURL1); !ok || src != models.SourceDOM {
		t.Errorf("expected DOM provenance for %s, got %v", postURL1, src)
	}
	if src, ok := store.Source(postURL4); !ok || src != models.SourceNetworkLog {
		t.Errorf("expected network provenance for %s, got %v", postURL4, src)
	}
	if store.Rejected() == 0 {
		t.Error("expected the avatar URL to be rejected")
	}
}

func TestRunNetworkLogUnavailable(t *testing.T) {
	session := &fakeSession{
		pageSource: "<html></html>",
		heights:    []int{500},
		elements: []browser.Element{
			fakeElement{attrs: map[string]string{"src": postURL1}},
		},
		networkErr: browser.ErrNetworkLogUnavailable,
	}
	store := urlstore.New()
	engine := New(session, store, testConfig(), nil)

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("network capture loss should degrade, not fail: %v", err)
	}

	if result.DOMCount != 1 {
		t.Errorf("expected the DOM channel to still run, got %d", result.DOMCount)
	}
	if result.NetworkCount != 0 {
		t.Errorf("expected no network URLs, got %d", result.NetworkCount)
	}
	if result.URLs != 1 {
		t.Errorf("expected 1 stored URL, got %d", result.URLs)
	}
}

func TestRunPageSourceFallback(t *testing.T) {
	session := &fakeSession{
		pageSource: `<html><body>` +
			`<img src="` + postURL1 + `">` +
			`<img srcset="` + postURL2 + ` 640w">` +
			`</body></html>`,
		heights: []int{500},
	}
	cfg := testConfig()
	cfg.Discovery.MinDOMResults = 1
	store := urlstore.New()
	engine := New(session, store, cfg, nil)

	result, err := engine.Run(context.Background(), "https://www.instagram.com/naturephotos/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DOMCount != 2 {
		t.Errorf("expected 2 URLs parsed out of the page source, got %d", result.DOMCount)
	}
	if src, ok := store.Source(postURL1); !ok || src != models.SourceDOM {
		t.Errorf("expected DOM provenance for parsed URLs, got %v", src)
	}
}

func TestSrcsetURLs(t *testing.T) {
	tests := []struct {
		name   string
		srcset string
		want   []string
	}{
		{
			name:   "two entries with descriptors",
			srcset: "https://cdn/a.jpg 640w, https://cdn/b.jpg 1080w",
			want:   []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		},
		{
			name:   "single entry without descriptor",
			srcset: "https://cdn/a.jpg",
			want:   []string{"https://cdn/a.jpg"},
		},
		{
			name:   "surrounding whitespace",
			srcset: "  https://cdn/a.jpg 2x ,  https://cdn/b.jpg 3x ",
			want:   []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		},
		{
			name:   "empty",
			srcset: "",
			want:   nil,
		},
		{
			name:   "bare comma",
			srcset: ",",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := srcsetURLs(tt.srcset)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
