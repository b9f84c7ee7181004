// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{"rate limit", 429, true},
		{"server error", 500, true},
		{"bad gateway", 502, true},
		{"unavailable", 503, true},
		{"request timeout", 408, true},

		{"bad request", 400, false},
		{"unauthorized", 401, false},
		{"forbidden", 403, false},
		{"not found", 404, false},
		{"unprocessable", 422, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyHTTPStatus("test", tt.status, "boom", nil)
			if IsRetryable(err) != tt.wantRetryable {
				t.Errorf("status %d: IsRetryable = %v, want %v", tt.status, IsRetryable(err), tt.wantRetryable)
			}
			if IsFatal(err) == tt.wantRetryable {
				t.Errorf("status %d: IsFatal = %v, want %v", tt.status, IsFatal(err), !tt.wantRetryable)
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	if got := ClassifyTransportError("test", nil); got != nil {
		t.Errorf("nil error classified as %v", got)
	}

	netErr := errors.New("dial tcp 127.0.0.1:11434: connection refused")
	if !IsRetryable(ClassifyTransportError("test", netErr)) {
		t.Error("network error should be retryable")
	}

	// Caller-initiated aborts pass through untouched.
	if err := ClassifyTransportError("test", context.Canceled); !errors.Is(err, context.Canceled) || IsRetryable(err) {
		t.Errorf("context.Canceled mangled: %v", err)
	}
	wrapped := fmt.Errorf("request: %w", context.DeadlineExceeded)
	if err := ClassifyTransportError("test", wrapped); !errors.Is(err, context.DeadlineExceeded) || IsRetryable(err) {
		t.Errorf("wrapped deadline mangled: %v", err)
	}
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	re := &RetryableError{Provider: "p", Message: "m"}
	if !IsRetryable(fmt.Errorf("outer: %w", re)) {
		t.Error("IsRetryable should see through wrapping")
	}

	fe := &FatalError{Provider: "p", Message: "m", Err: re}
	if !IsFatal(fe) {
		t.Error("IsFatal(fe) = false")
	}
	// An escalated fatal still wraps the retryable cause; IsFatal must
	// win at the decision site by being checked first.
	if !IsRetryable(fe) {
		t.Error("escalated fatal should still expose its retryable cause via As")
	}
}
