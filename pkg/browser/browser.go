// Package browser abstracts the automated browser session that discovery
// runs against. The Session interface keeps the rest of the pipeline
// independent of the driver: production code runs a real Chrome via
// chromedp, tests run a fake.
package browser

import "errors"

// ErrNetworkLogUnavailable is returned by NetworkLog when the session
// cannot capture network traffic. Discovery treats this as a degraded
// channel, not a failure.
var ErrNetworkLogUnavailable = errors.New("network log capture unavailable")

// NetworkEntry is one response observed on the browser's network channel
type NetworkEntry struct {
	URL      string
	MimeType string
}

// Element is a DOM element found in the current page
type Element interface {
	// Attribute returns the named attribute and whether it is present
	Attribute(name string) (string, bool)
}

// Session is a live browser page. All operations are synchronous; the
// browser's own event loop is opaque to callers.
type Session interface {
	// Navigate loads the given URL and waits for the page load event
	Navigate(url string) error
	// PageSource returns the current serialized DOM
	PageSource() (string, error)
	// ExecuteScript evaluates JavaScript in the page. res receives the
	// result when non-nil.
	ExecuteScript(js string, res interface{}) error
	// FindElements returns all elements matching a CSS selector
	FindElements(selector string) ([]Element, error)
	// NetworkLog returns the responses observed since the session started
	NetworkLog() ([]NetworkEntry, error)
	// Close releases the browser. Safe to call more than once.
	Close() error
}
