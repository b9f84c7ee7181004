// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/QuaysideAI/DockPilot/cmd/dockpilot/config"
	"github.com/QuaysideAI/DockPilot/pkg/logging"
	"github.com/QuaysideAI/DockPilot/services/agent"
	"github.com/QuaysideAI/DockPilot/services/agent/exec"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

// newLogger builds the process logger from the loaded config.
func newLogger(quiet bool) *logging.Logger {
	cfg := config.Global.Logging
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Level),
		LogDir:  cfg.Dir,
		Service: "dockpilot",
		JSON:    cfg.JSON,
		Quiet:   quiet,
	})
}

// newModelClient builds the provider client selected in the config and
// wraps it in the retry policy.
func newModelClient() (llm.Client, error) {
	modelCfg := config.Global.Model

	var (
		inner llm.Client
		err   error
	)
	switch modelCfg.Type {
	case "openai":
		if modelCfg.Name != "" {
			os.Setenv("OPENAI_MODEL", modelCfg.Name)
		}
		inner, err = llm.NewOpenAIClient()
	case "", "ollama":
		if modelCfg.BaseURL != "" {
			os.Setenv("OLLAMA_BASE_URL", modelCfg.BaseURL)
		}
		if modelCfg.Name != "" {
			os.Setenv("OLLAMA_MODEL", modelCfg.Name)
		}
		inner, err = llm.NewOllamaClient()
	case "mock":
		inner = llm.NewMockClient()
	default:
		return nil, fmt.Errorf("unknown model backend %q (want openai, ollama or mock)", modelCfg.Type)
	}
	if err != nil {
		return nil, err
	}

	backoffCfg := config.Global.Backoff
	return llm.NewBackoffClient(inner, llm.BackoffConfig{
		BaseDelay:  time.Duration(backoffCfg.BaseDelayMs) * time.Millisecond,
		MaxDelay:   time.Duration(backoffCfg.MaxDelayMs) * time.Millisecond,
		MaxRetries: backoffCfg.MaxRetries,
	}), nil
}

// newAgentLoop wires the dataset, toolset and loop from the config.
func newAgentLoop(logger *logging.Logger, sink agent.EventSink) (*agent.Loop, error) {
	client, err := newModelClient()
	if err != nil {
		return nil, err
	}

	registry, err := tools.NewDefaultRegistry(exec.NewDockDataset(), client)
	if err != nil {
		return nil, err
	}

	loopCfg := config.Global.Loop
	opts := []agent.LoopOption{agent.WithLogger(logger)}
	if sink != nil {
		opts = append(opts, agent.WithEventSink(sink))
	}
	return agent.NewLoop(client, tools.NewDispatcher(registry, logger), agent.LoopConfig{
		MaxIterations:         loopCfg.MaxIterations,
		MaxCorrectionAttempts: loopCfg.MaxCorrectionAttempts,
		MalformedThreshold:    loopCfg.MalformedThreshold,
	}, opts...), nil
}
