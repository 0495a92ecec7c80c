// Package instagram provides the HTTP client used to fetch images from
// Instagram's CDN hosts.
//
// This package includes:
//   - A fetch client with browser-mimicking headers and typed errors
//   - Helper functions for profile URLs and username handling
//
// The client deliberately does not buffer response bodies. Fetch returns the
// open response so the caller can stream image bytes straight to disk.
//
// Example usage:
//
//	client := instagram.NewClient(30*time.Second, "", log)
//
//	resp, err := client.Fetch(imageURL)
//	if err != nil {
//	    var e *errors.Error
//	    if stderrors.As(err, &e) && e.Type == errors.ErrorTypeRateLimit {
//	        // Back off before trying again
//	    }
//	    return err
//	}
//	defer resp.Body.Close()
//	// Stream resp.Body wherever it needs to go
package instagram
