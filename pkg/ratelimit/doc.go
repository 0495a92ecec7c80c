// Package ratelimit provides request pacing for the harvest pipeline.
//
// This package spaces out requests to avoid tripping the remote host's
// abuse detection. Slow and steady is the whole strategy: the pipeline is
// deliberately serial, so the limiter's job is cadence, not fairness.
//
// Available Implementations:
//
// Fixed Delay:
//   - Sleeps a fixed interval after each completed request
//   - The pacer used between CDN image fetches
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait(ctx) error - Block until a request is allowed or ctx is done
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Half a second after every fetch
//	limiter := ratelimit.NewFixedDelay(500 * time.Millisecond)
//
//	for _, url := range urls {
//	    fetch(url)
//	    if err := limiter.Wait(ctx); err != nil {
//	        return err
//	    }
//	}
package ratelimit
