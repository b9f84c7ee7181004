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
	"time"
)

// RetryableError indicates a transient provider failure (rate limit,
// overload, 5xx, transient network). The backoff controller retries
// these with exponential delay.
type RetryableError struct {
	// Provider is the provider name.
	Provider string

	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int

	// Message describes the failure.
	Message string

	// RetryAfter is the provider-suggested delay, if any.
	RetryAfter *time.Duration

	// Err is the underlying error, if any.
	Err error
}

func (e *RetryableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s retryable error (status=%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s retryable error: %s", e.Provider, e.Message)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// FatalError indicates a permanent provider failure (invalid request,
// authentication, model not found). It is never retried and aborts the
// run immediately.
type FatalError struct {
	// Provider is the provider name.
	Provider string

	// StatusCode is the HTTP status, or 0 when not applicable.
	StatusCode int

	// Message describes the failure.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *FatalError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s fatal error (status=%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s fatal error: %s", e.Provider, e.Message)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is (or wraps) a *RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// IsFatal reports whether err is (or wraps) a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// ClassifyHTTPStatus maps an HTTP status code to the retryable/fatal
// taxonomy. Rate limits and server-side failures are retryable; client
// errors are fatal.
//
// Inputs:
//
//	provider - Provider name for error messages
//	statusCode - HTTP status from the provider
//	message - Failure description
//	retryAfter - Provider-suggested delay (retryable errors only)
//
// Outputs:
//
//	error - *RetryableError or *FatalError
func ClassifyHTTPStatus(provider string, statusCode int, message string, retryAfter *time.Duration) error {
	switch {
	case statusCode == 429:
		return &RetryableError{
			Provider:   provider,
			StatusCode: statusCode,
			Message:    message,
			RetryAfter: retryAfter,
		}
	case statusCode >= 500:
		return &RetryableError{
			Provider:   provider,
			StatusCode: statusCode,
			Message:    message,
		}
	case statusCode == 408:
		// Request timeout: the provider never processed the request.
		return &RetryableError{
			Provider:   provider,
			StatusCode: statusCode,
			Message:    message,
		}
	default:
		return &FatalError{
			Provider:   provider,
			StatusCode: statusCode,
			Message:    message,
		}
	}
}

// ClassifyTransportError wraps a network-level error (connection
// refused, reset, DNS) as retryable. Context cancellation and deadline
// expiry pass through unchanged so callers can distinguish
// caller-initiated aborts from provider failures.
func ClassifyTransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &RetryableError{
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}
