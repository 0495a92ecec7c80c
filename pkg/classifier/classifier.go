// Package classifier decides whether a candidate URL points at a full-size
// post image or at noise such as avatars and grid thumbnails. Classification
// is pure string inspection: no network, no filesystem, no shared state.
package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule names reported in verdicts. Stable strings for diagnostics, not an API.
const (
	RuleProfilePath   = "reject-profile-path"
	RuleThumbnailSize = "reject-thumbnail-size"
	RulePostPath      = "accept-post-path"
	RuleLargeSize     = "accept-large-size"
	RuleCDNDefault    = "accept-cdn-default"
	RuleUnrecognized  = "reject-unrecognized"
)

// minFullSizeDimension is the smallest leading dimension of a size token
// that still counts as a full-size rendition.
const minFullSizeDimension = 640

// Verdict is the outcome of classifying one URL.
type Verdict struct {
	FullSize bool
	Rule     string
}

var (
	profilePathToken = "/t51.2885-19/"

	thumbnailTokens = []string{"_s150x150", "_s100x100", "s150x150", "s100x100"}

	postPathTokens = []string{"/t51.82787-15/", "/t51.75761-15/", "/t51.71878-15/"}

	// Loose thumbnail prefixes used by the final CDN rule. Wider than
	// thumbnailTokens on purpose: big renditions like _s1500x1500 are
	// accepted earlier by the size rule and never reach this check.
	looseThumbnailTokens = []string{"_s150", "_s100", "s150x150", "s100x100"}

	sizeTokenRe = regexp.MustCompile(`[ps](\d{3,4})x\d{3,4}`)
)

// Classify decides whether rawURL is a full-size post image. Rules are
// evaluated in order and the first match wins.
func Classify(rawURL string) Verdict {
	// Profile pictures live under their own path prefix.
	if strings.Contains(rawURL, profilePathToken) {
		return Verdict{FullSize: false, Rule: RuleProfilePath}
	}

	// Known thumbnail renditions.
	for _, token := range thumbnailTokens {
		if strings.Contains(rawURL, token) {
			return Verdict{FullSize: false, Rule: RuleThumbnailSize}
		}
	}

	// Post image path prefixes are authoritative regardless of size tokens.
	for _, token := range postPathTokens {
		if strings.Contains(rawURL, token) {
			return Verdict{FullSize: true, Rule: RulePostPath}
		}
	}

	// Embedded size token with a large enough leading dimension. Smaller
	// tokens fall through rather than reject.
	if m := sizeTokenRe.FindStringSubmatch(rawURL); m != nil {
		if size, err := strconv.Atoi(m[1]); err == nil && size >= minFullSizeDimension {
			return Verdict{FullSize: true, Rule: RuleLargeSize}
		}
	}

	// Anything else from the CDN family without thumbnail markers.
	if strings.Contains(rawURL, "instagram") || strings.Contains(rawURL, "fbcdn.net") {
		clean := true
		for _, token := range looseThumbnailTokens {
			if strings.Contains(rawURL, token) {
				clean = false
				break
			}
		}
		if clean {
			return Verdict{FullSize: true, Rule: RuleCDNDefault}
		}
	}

	return Verdict{FullSize: false, Rule: RuleUnrecognized}
}

// IsFullSize reports whether rawURL classifies as a full-size post image.
func IsFullSize(rawURL string) bool {
	return Classify(rawURL).FullSize
}

// IsCDNURL reports whether rawURL belongs to the Instagram CDN family.
// Used by callers that pre-filter before classification.
func IsCDNURL(rawURL string) bool {
	return strings.Contains(rawURL, "instagram") ||
		strings.Contains(rawURL, "fbcdn.net") ||
		strings.Contains(rawURL, "cdninstagram.com")
}

// TrimTrailingPunctuation strips punctuation that text extraction tends to
// drag along behind a URL.
func TrimTrailingPunctuation(rawURL string) string {
	return strings.TrimRight(rawURL, ".,;:!?)")
}
