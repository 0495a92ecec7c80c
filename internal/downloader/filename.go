package downloader

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// contentIDPattern matches the content ID Instagram embeds in CDN paths,
// e.g. /v/t51.2885-15/449123456_18367890123456789_n.jpg
var contentIDPattern = regexp.MustCompile(`/(\d+_\d+_\d+_n\.(jpg|jpeg|png|webp))`)

// DeriveFilename maps an image URL onto a local filename. The content ID
// from the CDN path is preferred because it survives URL churn: signatures
// and size hints change between sessions, the ID does not. index > 0 adds
// a zero-padded ordering prefix.
func DeriveFilename(rawURL string, index int) string {
	name := baseFilename(rawURL)
	if index > 0 {
		name = fmt.Sprintf("%04d_%s", index, name)
	}
	return name
}

func baseFilename(rawURL string) string {
	urlPath := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		urlPath = u.Path
	}

	if m := contentIDPattern.FindStringSubmatch(urlPath); m != nil {
		return m[1]
	}

	// Fallback: the last path segment, when it looks like a filename
	base := path.Base(urlPath)
	if base != "." && base != "/" && strings.Contains(base, ".") {
		return base
	}

	return fmt.Sprintf("image_%d.jpg", stableHash(rawURL)%1000000)
}

// stableHash is process-independent so fallback names are identical across
// runs, keeping the existence check meaningful
func stableHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
