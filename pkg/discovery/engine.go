// Package discovery drives a browser session against a profile page,
// expands its lazily-loaded content by scrolling, and collects qualifying
// image URLs into the URL store.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"igharvest/pkg/browser"
	"igharvest/pkg/config"
	errs "igharvest/pkg/errors"
	"igharvest/pkg/logger"
	"igharvest/pkg/models"
	"igharvest/pkg/retry"
	"igharvest/pkg/urlstore"
)

const (
	scrollToBottomJS = "window.scrollTo(0, document.body.scrollHeight);"
	// The nudge backs off the bottom and returns, which shakes loose lazy
	// content a plain bottom-scroll sometimes misses
	scrollNudgeJS = "window.scrollTo(0, document.body.scrollHeight - 1000);"
	pageHeightJS  = "document.body.scrollHeight"

	// unavailableMarker is the text Instagram renders for missing or
	// private profiles
	unavailableMarker = "Sorry, this page isn't available"
)

// ProgressFunc is called after every completed scroll with the running
// scroll count and the page height it reached
type ProgressFunc func(scrolls, height int)

// Engine runs one discovery session against a profile page
type Engine struct {
	session  browser.Session
	store    *urlstore.Store
	config   *config.Config
	logger   logger.Logger
	progress ProgressFunc
}

// New creates a discovery engine over an open browser session
func New(session browser.Session, store *urlstore.Store, cfg *config.Config, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		session: session,
		store:   store,
		config:  cfg,
		logger:  log,
	}
}

// SetProgress installs a scroll progress callback
func (e *Engine) SetProgress(fn ProgressFunc) {
	e.progress = fn
}

// Run navigates to the profile, scrolls until content stabilizes and
// harvests image URLs from both the DOM and the network log. The browser
// session is released before Run returns, whatever happens.
func (e *Engine) Run(ctx context.Context, profileURL string) (models.DiscoveryResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := models.DiscoveryResult{Profile: profileURL}

	defer e.session.Close()

	e.logger.InfoWithFields("starting discovery", map[string]interface{}{
		"profile":     profileURL,
		"max_scrolls": e.config.Discovery.MaxScrolls,
	})

	if err := e.session.Navigate(profileURL); err != nil {
		return result, err
	}

	// Let the initial page render settle
	if err := retry.Wait(ctx, e.config.Browser.PageLoadWait); err != nil {
		return result, err
	}

	source, err := e.session.PageSource()
	if err != nil {
		return result, fmt.Errorf("failed to read page after load: %w", err)
	}
	if strings.Contains(source, unavailableMarker) {
		return result, errs.New(errs.ErrorTypeUnavailable, "profile not found or private")
	}

	scrolls, err := e.scrollToEnd(ctx, profileURL)
	result.Scrolls = scrolls
	if err != nil {
		return result, fmt.Errorf("discovery aborted mid-scroll: %w", err)
	}

	result.DOMCount = e.collectFromDOM()

	networkCount, err := e.collectFromNetworkLog()
	if err != nil {
		// Degraded, not failed: the DOM channel already ran
		e.logger.WarnWithFields("network channel unavailable, DOM results only", map[string]interface{}{
			"error": err.Error(),
		})
	}
	result.NetworkCount = networkCount

	result.URLs = e.store.Len()

	e.logger.InfoWithFields("discovery complete", map[string]interface{}{
		"profile":      profileURL,
		"scrolls":      result.Scrolls,
		"dom_urls":     result.DOMCount,
		"network_urls": result.NetworkCount,
		"total_urls":   result.URLs,
		"rejected":     e.store.Rejected(),
	})

	return result, nil
}

// scrollToEnd scrolls to the bottom repeatedly until the document height
// stops growing. A stalled height gets one nudge before discovery accepts
// that the end was reached. The iteration cap is a soft bound, not an error.
func (e *Engine) scrollToEnd(ctx context.Context, profileURL string) (int, error) {
	lastHeight, err := e.pageHeight()
	if err != nil {
		return 0, err
	}

	scrolls := 0
	for scrolls < e.config.Discovery.MaxScrolls {
		if err := e.session.ExecuteScript(scrollToBottomJS, nil); err != nil {
			return scrolls, fmt.Errorf("scroll failed: %w", err)
		}
		if err := retry.Wait(ctx, e.config.Discovery.ScrollDelay); err != nil {
			return scrolls, err
		}

		newHeight, err := e.pageHeight()
		if err != nil {
			return scrolls, err
		}

		if newHeight == lastHeight {
			if err := e.session.ExecuteScript(scrollNudgeJS, nil); err != nil {
				return scrolls, fmt.Errorf("nudge failed: %w", err)
			}
			if err := retry.Wait(ctx, e.config.Discovery.NudgeDelay); err != nil {
				return scrolls, err
			}

			if err := e.session.ExecuteScript(scrollToBottomJS, nil); err != nil {
				return scrolls, fmt.Errorf("scroll failed: %w", err)
			}
			if err := retry.Wait(ctx, e.config.Discovery.ScrollDelay); err != nil {
				return scrolls, err
			}

			newHeight, err = e.pageHeight()
			if err != nil {
				return scrolls, err
			}
			if newHeight == lastHeight {
				e.logger.InfoWithFields("reached end of page", map[string]interface{}{
					"scrolls": scrolls,
				})
				return scrolls, nil
			}
		}

		lastHeight = newHeight
		scrolls++

		if e.progress != nil {
			e.progress(scrolls, newHeight)
		}
		if scrolls%5 == 0 {
			logger.LogScrollProgress(profileURL, scrolls, newHeight)
		}
	}

	e.logger.InfoWithFields("scroll cap reached", map[string]interface{}{
		"scrolls": scrolls,
	})
	return scrolls, nil
}

func (e *Engine) pageHeight() (int, error) {
	var height int
	if err := e.session.ExecuteScript(pageHeightJS, &height); err != nil {
		return 0, fmt.Errorf("failed to read page height: %w", err)
	}
	return height, nil
}

// collectFromDOM harvests img src and srcset URLs from the live page.
// When the element query comes up thin, the serialized page source is
// parsed as a second pass.
func (e *Engine) collectFromDOM() int {
	admitted := 0

	elements, err := e.session.FindElements("img")
	if err != nil {
		e.logger.WarnWithFields("DOM image query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	for _, el := range elements {
		if src, ok := el.Attribute("src"); ok {
			if e.store.Admit(models.Candidate{URL: src, Source: models.SourceDOM}) {
				admitted++
			}
		}
		if srcset, ok := el.Attribute("srcset"); ok {
			for _, u := range srcsetURLs(srcset) {
				if e.store.Admit(models.Candidate{URL: u, Source: models.SourceDOM}) {
					admitted++
				}
			}
		}
	}

	if admitted < e.config.Discovery.MinDOMResults {
		fromSource := e.collectFromPageSource()
		e.logger.DebugWithFields("element query was thin, parsed page source", map[string]interface{}{
			"elements_admitted": admitted,
			"source_admitted":   fromSource,
		})
		admitted += fromSource
	}

	return admitted
}

// collectFromPageSource parses the serialized DOM for image tags the
// element query missed
func (e *Engine) collectFromPageSource() int {
	source, err := e.session.PageSource()
	if err != nil {
		e.logger.WarnWithFields("failed to read page source", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		e.logger.WarnWithFields("failed to parse page source", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}

	admitted := 0
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			if e.store.Admit(models.Candidate{URL: src, Source: models.SourceDOM}) {
				admitted++
			}
		}
		if srcset, ok := sel.Attr("srcset"); ok {
			for _, u := range srcsetURLs(srcset) {
				if e.store.Admit(models.Candidate{URL: u, Source: models.SourceDOM}) {
					admitted++
				}
			}
		}
	})
	return admitted
}

// collectFromNetworkLog harvests image responses the browser observed
func (e *Engine) collectFromNetworkLog() (int, error) {
	entries, err := e.session.NetworkLog()
	if err != nil {
		return 0, err
	}

	admitted := 0
	for _, entry := range entries {
		if !strings.Contains(entry.MimeType, "image") {
			continue
		}
		if e.store.Admit(models.Candidate{URL: entry.URL, Source: models.SourceNetworkLog}) {
			admitted++
		}
	}
	return admitted, nil
}

// srcsetURLs splits a srcset attribute into its URLs. Each comma-separated
// entry is "url descriptor"; only the URL token matters here.
func srcsetURLs(srcset string) []string {
	var urls []string
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(entry))
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
