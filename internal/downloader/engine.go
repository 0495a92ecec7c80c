package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"igharvest/pkg/config"
	errs "igharvest/pkg/errors"
	"igharvest/pkg/logger"
	"igharvest/pkg/models"
	"igharvest/pkg/ratelimit"
	"igharvest/pkg/retry"
)

// ImageFetcher fetches a single image URL and returns the open response
type ImageFetcher interface {
	Fetch(url string) (*http.Response, error)
}

// ImageStorage persists named images and answers existence checks
type ImageStorage interface {
	Exists(name string) bool
	Save(name string, r io.Reader) (int64, error)
}

// ProgressFunc receives each outcome as it is produced. index is 1-based.
type ProgressFunc func(index, total int, outcome models.Outcome)

// Engine downloads a list of image URLs one at a time. Serial on purpose:
// the fixed inter-request delay is the abuse-avoidance strategy, and
// concurrent fetches would defeat it.
type Engine struct {
	client   ImageFetcher
	storage  ImageStorage
	pacer    ratelimit.Limiter
	cfg      config.DownloadConfig
	logger   logger.Logger
	progress ProgressFunc
}

// NewEngine creates an acquisition engine over a fetch client and a storage
// backend. A nil pacer gets a fixed-delay pacer from the config.
func NewEngine(
	client ImageFetcher,
	storage ImageStorage,
	pacer ratelimit.Limiter,
	cfg config.DownloadConfig,
	log logger.Logger,
) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = ratelimit.NewFixedDelay(cfg.Delay)
	}

	return &Engine{
		client:  client,
		storage: storage,
		pacer:   pacer,
		cfg:     cfg,
		logger:  log,
	}
}

// SetProgress registers a sink for per-item outcomes
func (e *Engine) SetProgress(fn ProgressFunc) {
	e.progress = fn
}

// Run downloads every URL in order and returns the aggregate summary.
// Individual failures never abort the batch.
func (e *Engine) Run(ctx context.Context, urls []string) models.Summary {
	if ctx == nil {
		ctx = context.Background()
	}

	e.logger.InfoWithFields("starting downloads", map[string]interface{}{
		"urls":        len(urls),
		"delay":       e.cfg.Delay.String(),
		"max_retries": e.cfg.MaxRetries,
	})

	var summary models.Summary
	for i, imageURL := range urls {
		if ctx.Err() != nil {
			e.logger.WarnWithFields("run cancelled", map[string]interface{}{
				"completed": i,
				"total":     len(urls),
			})
			break
		}

		outcome := e.fetchOne(ctx, imageURL, i+1)
		summary.Add(outcome)

		if e.progress != nil {
			e.progress(i+1, len(urls), outcome)
		}

		// Backpressure after every completed fetch. Skips issued no request,
		// so they owe no delay.
		if !outcome.Skipped && i < len(urls)-1 {
			e.pacer.Wait(ctx)
		}
	}

	e.logger.InfoWithFields("download run complete", map[string]interface{}{
		"successful": summary.Successful,
		"failed":     summary.Failed,
		"skipped":    summary.Skipped,
		"total":      summary.Total,
	})

	return summary
}

// fetchOne handles a single URL through the full skip/fetch/retry/save cycle
func (e *Engine) fetchOne(ctx context.Context, imageURL string, index int) models.Outcome {
	start := time.Now()

	nameIndex := 0
	if e.cfg.IndexPrefix {
		nameIndex = index
	}
	name := DeriveFilename(imageURL, nameIndex)

	outcome := models.Outcome{URL: imageURL, Filename: name}

	// A file on disk is the whole resume mechanism
	if e.storage.Exists(name) {
		e.logger.DebugWithFields("image already saved", map[string]interface{}{
			"filename": name,
		})
		outcome.Success = true
		outcome.Skipped = true
		outcome.Reason = "already saved"
		outcome.Duration = time.Since(start)
		return outcome
	}

	attempts := 0
	var written int64
	op := func() error {
		attempts++
		resp, err := e.client.Fetch(imageURL)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "image") {
			return errs.New(errs.ErrorTypeContentType, fmt.Sprintf("not an image: %s", contentType))
		}

		n, err := e.storage.Save(name, resp.Body)
		if err != nil {
			return errs.New(errs.ErrorTypeUnknown, fmt.Sprintf("save failed: %v", err))
		}
		written = n
		return nil
	}

	err := retry.Do(op, &retry.Config{
		MaxAttempts: e.cfg.MaxRetries + 1,
		Backoff:     retry.ForFactor(e.cfg.BackoffFactor),
		RetryIf:     e.shouldRetry,
		Context:     ctx,
		Logger:      e.logger,
	})

	outcome.Attempts = attempts
	outcome.Duration = time.Since(start)

	if err != nil {
		outcome.Reason = err.Error()
		e.logger.ErrorWithFields("download failed", map[string]interface{}{
			"url":      imageURL,
			"filename": name,
			"attempts": attempts,
			"error":    err.Error(),
		})
		return outcome
	}

	outcome.Success = true
	outcome.Bytes = written
	e.logger.DebugWithFields("download complete", map[string]interface{}{
		"filename": name,
		"bytes":    written,
		"attempts": attempts,
		"duration": outcome.Duration,
	})
	return outcome
}

// shouldRetry applies the configured status set: transport errors and listed
// statuses retry, everything else fails immediately
func (e *Engine) shouldRetry(err error) bool {
	var typed *errs.Error
	if errors.As(err, &typed) {
		if typed.Code != 0 {
			return e.cfg.ShouldRetryStatus(typed.Code)
		}
		return typed.Type == errs.ErrorTypeNetwork
	}
	return err != nil
}
