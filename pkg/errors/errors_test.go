package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorType
	}{
		{"rate limited", 429, ErrorTypeRateLimit},
		{"not found", 404, ErrorTypeNotFound},
		{"internal error", 500, ErrorTypeServerError},
		{"bad gateway", 502, ErrorTypeServerError},
		{"service unavailable", 503, ErrorTypeServerError},
		{"forbidden", 403, ErrorTypeUnknown},
		{"teapot", 418, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatusCode(tt.status, "request failed")
			if err.Type != tt.want {
				t.Errorf("FromStatusCode(%d).Type = %q, want %q", tt.status, err.Type, tt.want)
			}
			if err.Code != tt.status {
				t.Errorf("FromStatusCode(%d).Code = %d", tt.status, err.Code)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	withCode := FromStatusCode(503, "fetch failed")
	if got := withCode.Error(); got != "server_error error (code 503): fetch failed" {
		t.Errorf("Error() = %q", got)
	}

	withoutCode := New(ErrorTypeParsing, "no URLs in input")
	if got := withoutCode.Error(); got != "parsing error: no URLs in input" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorType{ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError}
	for _, et := range retryable {
		if !IsRetryable(et) {
			t.Errorf("IsRetryable(%q) = false, want true", et)
		}
	}

	permanent := []ErrorType{ErrorTypeNotFound, ErrorTypeContentType, ErrorTypeUnavailable, ErrorTypeParsing, ErrorTypeUnknown}
	for _, et := range permanent {
		if IsRetryable(et) {
			t.Errorf("IsRetryable(%q) = true, want false", et)
		}
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	for _, code := range []int{0, 429, 500, 502, 503, 504} {
		if !IsRetryableStatusCode(code) {
			t.Errorf("IsRetryableStatusCode(%d) = false, want true", code)
		}
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 501} {
		if IsRetryableStatusCode(code) {
			t.Errorf("IsRetryableStatusCode(%d) = true, want false", code)
		}
	}
}

func TestIsRetryableErr(t *testing.T) {
	if !IsRetryableErr(FromStatusCode(503, "down")) {
		t.Error("typed server error should be retryable")
	}
	if IsRetryableErr(FromStatusCode(404, "gone")) {
		t.Error("typed not-found error should not be retryable")
	}

	// Wrapping must not hide the typed error from errors.As
	wrapped := fmt.Errorf("fetching image: %w", FromStatusCode(429, "slow down"))
	if !IsRetryableErr(wrapped) {
		t.Error("wrapped rate-limit error should be retryable")
	}

	// Untyped errors are treated as transport failures
	if !IsRetryableErr(stderrors.New("connection reset")) {
		t.Error("untyped error should be retryable")
	}
	if IsRetryableErr(nil) {
		t.Error("nil error should not be retryable")
	}
}
