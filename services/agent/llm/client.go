// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm provides the external model client for the agent loop.
//
// This package defines the contract every text-generation backend must
// implement, the retryable/fatal error taxonomy the backoff controller
// relies on, and the provider implementations (OpenAI, Ollama, mock).
//
// Thread Safety:
//
//	All client implementations in this package are safe for concurrent
//	use. The BackoffClient wrapper carries per-instance retry state and
//	should be created once per run.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for model interactions.
//
// Implementations must be safe for concurrent use and must classify
// failures as *RetryableError or *FatalError (see errors.go) so the
// backoff controller can decide whether to retry.
type Client interface {
	// Generate sends a prompt to the model and returns the generated
	// text plus token-usage counters.
	//
	// Inputs:
	//   ctx - Context for cancellation and timeout
	//   request - The generation request
	//
	// Outputs:
	//   *Response - The model response with usage accounting
	//   error - *RetryableError, *FatalError, or a context error
	Generate(ctx context.Context, request *Request) (*Response, error)

	// Name returns the provider name (e.g., "openai", "ollama", "mock").
	Name() string

	// Model returns the model being used.
	Model() string
}

// Request represents a generation request to the model.
type Request struct {
	// SystemPrompt is the system message. Optional.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Prompt is the user-visible prompt text.
	Prompt string `json:"prompt"`

	// MaxTokens limits the response length. Zero means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-1.0).
	Temperature float32 `json:"temperature,omitempty"`

	// StopSequences defines sequences that stop generation.
	StopSequences []string `json:"stop_sequences,omitempty"`

	// StructuredOutput optionally requests JSON output conforming to
	// the given JSON Schema. Providers that cannot enforce a schema
	// fall back to instructing the model in the prompt.
	StructuredOutput map[string]any `json:"structured_output,omitempty"`
}

// Usage carries token-usage counters for one model call.
type Usage struct {
	// PromptTokens is the input token count.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the output token count.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is prompt plus completion.
	TotalTokens int `json:"total_tokens"`
}

// Add accumulates another usage record into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Response represents a model response.
type Response struct {
	// Text is the generated text.
	Text string `json:"text"`

	// Usage is the token accounting for this call.
	Usage Usage `json:"usage"`

	// Duration is how long the request took.
	Duration time.Duration `json:"duration"`

	// Model is the model that generated this response.
	Model string `json:"model,omitempty"`
}
