// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaClient implements Client against a local Ollama server.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	CreatedAt       string `json:"created_at"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// NewOllamaClient builds a client from OLLAMA_BASE_URL and
// OLLAMA_MODEL.
func NewOllamaClient() (*OllamaClient, error) {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	model := os.Getenv("OLLAMA_MODEL")
	if baseURL == "" {
		slog.Warn("OLLAMA_BASE_URL not set, defaulting to http://localhost:11434")
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		slog.Warn("OLLAMA_MODEL not set, defaulting to llama3.1")
		model = "llama3.1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	slog.Info("Initializing Ollama client", "base_url", baseURL, "model", model)
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    baseURL,
		model:      model,
	}, nil
}

// Name implements Client.
func (o *OllamaClient) Name() string { return "ollama" }

// Model implements Client.
func (o *OllamaClient) Model() string { return o.model }

// Generate implements Client.
func (o *OllamaClient) Generate(ctx context.Context, request *Request) (*Response, error) {
	slog.Debug("Generating text via Ollama", "model", o.model)
	generateURL := o.baseURL + "/api/generate"

	options := map[string]any{
		"temperature": request.Temperature,
	}
	if request.MaxTokens > 0 {
		options["num_predict"] = request.MaxTokens
	}
	if len(request.StopSequences) > 0 {
		options["stop"] = request.StopSequences
	}
	payload := ollamaGenerateRequest{
		Model:   o.model,
		Prompt:  request.Prompt,
		System:  request.SystemPrompt,
		Stream:  false,
		Options: options,
	}
	if request.StructuredOutput != nil {
		// Ollama supports "json" format; the schema itself goes into
		// the prompt upstream.
		payload.Format = "json"
	}

	reqBodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, &FatalError{Provider: "ollama", Message: fmt.Sprintf("marshal request: %v", err), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, generateURL, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return nil, &FatalError{Provider: "ollama", Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError("ollama", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, ClassifyTransportError("ollama", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus("ollama", httpResp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, &RetryableError{Provider: "ollama", Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}

	slog.Debug("Received response from Ollama",
		"done", genResp.Done,
		"eval_count", genResp.EvalCount)
	return &Response{
		Text: genResp.Response,
		Usage: Usage{
			PromptTokens:     genResp.PromptEvalCount,
			CompletionTokens: genResp.EvalCount,
			TotalTokens:      genResp.PromptEvalCount + genResp.EvalCount,
		},
		Duration: time.Since(start),
		Model:    genResp.Model,
	}, nil
}
