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
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// BackoffConfig configures the retry policy applied to retryable
// provider failures.
type BackoffConfig struct {
	// BaseDelay is the delay after the first failure. Default 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth. Default 30s.
	MaxDelay time.Duration

	// MaxRetries is the number of consecutive retryable failures
	// tolerated before escalating to fatal. Default 6.
	MaxRetries int

	// JitterFraction is the maximum random fraction added to each
	// delay. Default 0.2 (up to +20%).
	JitterFraction float64
}

// applyDefaults fills zero fields with defaults.
func (c *BackoffConfig) applyDefaults() {
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 6
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = 0.2
	}
}

// SleepFunc is the sleep primitive used between retries. Injectable so
// tests can run without wall-clock delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// defaultSleep sleeps for d or until the context is done.
func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DelayForFailure computes the backoff delay before re-issuing a
// request after the n-th consecutive retryable failure (1-indexed),
// without jitter: min(BaseDelay * 2^(n-1), MaxDelay).
//
// Exposed as a pure function so the non-decreasing/capped delay
// sequence can be asserted exactly in tests.
func DelayForFailure(n int, cfg BackoffConfig) time.Duration {
	cfg.applyDefaults()
	if n < 1 {
		n = 1
	}
	d := float64(cfg.BaseDelay) * math.Pow(2, float64(n-1))
	if d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	return time.Duration(d)
}

// BackoffClient wraps a Client with the retry policy: retryable
// failures are re-issued after an exponentially growing delay plus
// jitter; fatal failures surface immediately. The consecutive-failure
// counter resets to zero after any successful call.
//
// Backoff retries are invisible to the caller: a single Generate call
// either returns a successful response, a *FatalError, or a context
// error. In particular a retry never consumes a task-loop iteration.
//
// Thread Safety:
//
//	BackoffClient is safe for concurrent use, but the failure counter
//	is shared across callers. Create one instance per run unless a
//	process-wide shared budget is explicitly wanted.
type BackoffClient struct {
	inner Client
	cfg   BackoffConfig
	sleep SleepFunc
	rng   *rand.Rand

	mu       sync.Mutex
	failures int
}

// NewBackoffClient wraps inner with the given retry policy.
func NewBackoffClient(inner Client, cfg BackoffConfig) *BackoffClient {
	cfg.applyDefaults()
	return &BackoffClient{
		inner: inner,
		cfg:   cfg,
		sleep: defaultSleep,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSleep overrides the sleep primitive. For tests.
func (b *BackoffClient) WithSleep(sleep SleepFunc) *BackoffClient {
	b.sleep = sleep
	return b
}

// WithJitterSource overrides the jitter randomness source. For tests.
func (b *BackoffClient) WithJitterSource(rng *rand.Rand) *BackoffClient {
	b.rng = rng
	return b
}

// Name returns the wrapped provider's name.
func (b *BackoffClient) Name() string { return b.inner.Name() }

// Model returns the wrapped provider's model.
func (b *BackoffClient) Model() string { return b.inner.Model() }

// Failures returns the current consecutive-failure count.
func (b *BackoffClient) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Generate re-issues the identical request on retryable failures until
// success, a fatal error, context cancellation, or retry exhaustion.
// Exhaustion escalates to a *FatalError wrapping the last retryable
// error.
func (b *BackoffClient) Generate(ctx context.Context, request *Request) (*Response, error) {
	for {
		resp, err := b.inner.Generate(ctx, request)
		if err == nil {
			b.mu.Lock()
			b.failures = 0
			b.mu.Unlock()
			return resp, nil
		}

		// Fatal wins over retryable when both appear in a chain, so an
		// escalated fatal wrapping its retryable cause is never retried.
		if IsFatal(err) || !IsRetryable(err) {
			return nil, err
		}

		b.mu.Lock()
		b.failures++
		n := b.failures
		b.mu.Unlock()

		if n > b.cfg.MaxRetries {
			slog.Error("model retry budget exhausted, escalating to fatal",
				"provider", b.inner.Name(), "failures", n-1)
			return nil, &FatalError{
				Provider: b.inner.Name(),
				Message:  "retry budget exhausted",
				Err:      err,
			}
		}

		delay := b.delayWithJitter(n, err)
		slog.Warn("retryable model failure, backing off",
			"provider", b.inner.Name(),
			"failure", n,
			"delay_ms", delay.Milliseconds(),
			"error", err.Error())

		if sleepErr := b.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

// delayWithJitter applies the computed delay plus up to JitterFraction of
// random jitter. A provider-suggested Retry-After takes precedence
// when it exceeds the computed delay.
func (b *BackoffClient) delayWithJitter(n int, err error) time.Duration {
	base := DelayForFailure(n, b.cfg)

	var re *RetryableError
	if errors.As(err, &re) && re.RetryAfter != nil && *re.RetryAfter > base {
		base = *re.RetryAfter
	}

	b.mu.Lock()
	jitter := time.Duration(b.rng.Float64() * b.cfg.JitterFraction * float64(base))
	b.mu.Unlock()
	return base + jitter
}
