package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"igharvest/pkg/config"
	"igharvest/pkg/logger"
)

// Options controls how the Chrome session is launched
type Options struct {
	// Headless runs the browser without a window. Discovery against
	// Instagram works better headful because the feed renders the same
	// markup a human session sees.
	Headless bool
	// UserAgent overrides the browser's default user agent
	UserAgent string
}

// ChromeSession drives a real Chrome instance through the DevTools
// protocol. Network responses are recorded from the moment the session
// starts so the capture covers initial page load, not just scrolling.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      logger.Logger

	mu        sync.Mutex
	captured  []NetworkEntry
	networkOK bool
	closed    bool
}

var _ Session = (*ChromeSession)(nil)

// NewChromeSession launches Chrome and attaches the network listener
func NewChromeSession(ctx context.Context, opts Options, log logger.Logger) (*ChromeSession, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	taskCtx, cancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:         taskCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      log,
	}

	// Attach before starting the browser so early responses are not missed
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok {
			s.mu.Lock()
			s.captured = append(s.captured, NetworkEntry{
				URL:      e.Response.URL,
				MimeType: e.Response.MimeType,
			})
			s.mu.Unlock()
		}
	})

	// First Run starts the browser process
	if err := chromedp.Run(taskCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	// Network capture is a best-effort channel. DOM extraction carries
	// discovery when it cannot be enabled.
	if err := chromedp.Run(taskCtx, network.Enable()); err != nil {
		log.WarnWithFields("network capture unavailable, continuing DOM-only", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		s.networkOK = true
	}

	log.DebugWithFields("browser session started", map[string]interface{}{
		"headless": opts.Headless,
	})

	return s, nil
}

// Navigate loads the given URL and waits for the page load event
func (s *ChromeSession) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// PageSource returns the current serialized DOM
func (s *ChromeSession) PageSource() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page source: %w", err)
	}
	return html, nil
}

// ExecuteScript evaluates JavaScript in the page
func (s *ChromeSession) ExecuteScript(js string, res interface{}) error {
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, res)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// FindElements returns all elements matching a CSS selector
func (s *ChromeSession) FindElements(selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(s.ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("element query %q failed: %w", selector, err)
	}

	elements := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, chromeElement{node: node})
	}
	return elements, nil
}

// NetworkLog returns the responses observed since the session started
func (s *ChromeSession) NetworkLog() ([]NetworkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.networkOK {
		return nil, ErrNetworkLogUnavailable
	}

	entries := make([]NetworkEntry, len(s.captured))
	copy(entries, s.captured)
	return entries, nil
}

// Close releases the browser. Safe to call more than once.
func (s *ChromeSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.allocCancel()
	s.logger.Debug("browser session closed")
	return nil
}

// chromeElement wraps a DevTools DOM node
type chromeElement struct {
	node *cdp.Node
}

// Attribute returns the named attribute and whether it is present
func (e chromeElement) Attribute(name string) (string, bool) {
	attrs := e.node.Attributes
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == name {
			return attrs[i+1], true
		}
	}
	return "", false
}
