// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"sync"
	"time"
)

// MockClient is a scripted model client for tests and offline runs.
//
// Responses are served from a queue; when the queue is empty the
// default response (or a response function, if set) is used. Every
// request is recorded for assertions.
//
// Thread Safety:
//
//	MockClient is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// name is the provider name.
	name string

	// model is the model name.
	model string

	// script holds queued replies served in order.
	script []scriptEntry

	// defaultResponse is returned when the script is exhausted.
	defaultResponse *Response

	// responseFunc, when set, generates replies dynamically after the
	// script is exhausted.
	responseFunc func(*Request) (*Response, error)

	// calls records every Generate invocation.
	calls []GenerateCall
}

type scriptEntry struct {
	resp *Response
	err  error
}

// GenerateCall records one call to Generate.
type GenerateCall struct {
	Request   *Request
	Timestamp time.Time
}

// NewMockClient creates a mock client with a benign default response.
func NewMockClient() *MockClient {
	return &MockClient{
		name:  "mock",
		model: "mock-model",
		defaultResponse: &Response{
			Text:  "FINAL_ANSWER: mock answer",
			Usage: Usage{PromptTokens: 50, CompletionTokens: 50, TotalTokens: 100},
		},
	}
}

// WithName sets the provider name.
func (c *MockClient) WithName(name string) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	return c
}

// WithDefaultResponse replaces the fallback response.
func (c *MockClient) WithDefaultResponse(resp *Response) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultResponse = resp
	return c
}

// WithResponseFunc sets a dynamic response function used once the
// script is exhausted.
func (c *MockClient) WithResponseFunc(f func(*Request) (*Response, error)) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responseFunc = f
	return c
}

// QueueText queues a successful reply with the given text and a fixed
// 100-token usage record.
func (c *MockClient) QueueText(text string) *MockClient {
	return c.QueueResponse(&Response{
		Text:  text,
		Usage: Usage{PromptTokens: 60, CompletionTokens: 40, TotalTokens: 100},
	})
}

// QueueResponse queues a successful reply.
func (c *MockClient) QueueResponse(resp *Response) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = append(c.script, scriptEntry{resp: resp})
	return c
}

// QueueError queues a failure.
func (c *MockClient) QueueError(err error) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = append(c.script, scriptEntry{err: err})
	return c
}

// Calls returns a copy of all recorded calls.
func (c *MockClient) Calls() []GenerateCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]GenerateCall, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns how many times Generate was invoked.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Name implements Client.
func (c *MockClient) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Model implements Client.
func (c *MockClient) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Generate implements Client by replaying the script.
func (c *MockClient) Generate(ctx context.Context, request *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.calls = append(c.calls, GenerateCall{Request: request, Timestamp: time.Now()})

	if len(c.script) > 0 {
		entry := c.script[0]
		c.script = c.script[1:]
		c.mu.Unlock()
		if entry.err != nil {
			return nil, entry.err
		}
		return entry.resp, nil
	}

	f := c.responseFunc
	def := c.defaultResponse
	c.mu.Unlock()

	if f != nil {
		return f(request)
	}
	return def, nil
}
