// Package retry provides exponential backoff and retry logic for handling
// transient failures in network operations, particularly CDN image fetches.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Optional jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the pipeline's typed errors
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return client.Ping()
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 4,
//		Backoff:     retry.ForFactor(1.0),
//		RetryIf:     retry.DefaultRetryIf,
//		Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// The default predicate consults the pipeline's typed errors: network,
// rate-limit and server errors retry; not-found, content-type and
// unavailable errors fail immediately.
package retry
