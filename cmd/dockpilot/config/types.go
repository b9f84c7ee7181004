// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

// DockPilotConfig is the on-disk configuration at
// ~/.dockpilot/dockpilot.yaml.
type DockPilotConfig struct {
	// Model selects the provider backing the agent.
	Model ModelConfig `yaml:"model"`

	// Loop bounds each run.
	Loop LoopConfig `yaml:"loop"`

	// Backoff shapes the retry policy for transient provider failures.
	Backoff BackoffConfig `yaml:"backoff"`

	// Logging controls log output.
	Logging LoggingConfig `yaml:"logging"`
}

type ModelConfig struct {
	// Type can be "openai", "ollama" or "mock".
	Type string `yaml:"type"`

	// BaseURL overrides the provider endpoint (ollama).
	BaseURL string `yaml:"base_url,omitempty"`

	// Name overrides the model name.
	Name string `yaml:"name,omitempty"`
}

type LoopConfig struct {
	MaxIterations         int `yaml:"max_iterations"`
	MaxCorrectionAttempts int `yaml:"max_correction_attempts"`
	MalformedThreshold    int `yaml:"malformed_threshold"`
}

type BackoffConfig struct {
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
	MaxRetries  int `yaml:"max_retries"`
}

type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Dir receives the daily log files. Empty disables file logging.
	Dir string `yaml:"dir,omitempty"`

	// JSON switches file output to one JSON object per line.
	JSON bool `yaml:"json"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() DockPilotConfig {
	return DockPilotConfig{
		Model: ModelConfig{Type: "ollama"},
		Loop: LoopConfig{
			MaxIterations:         12,
			MaxCorrectionAttempts: 3,
			MalformedThreshold:    3,
		},
		Backoff: BackoffConfig{
			BaseDelayMs: 500,
			MaxDelayMs:  30000,
			MaxRetries:  6,
		},
		Logging: LoggingConfig{Level: "info", Dir: "~/.dockpilot/logs"},
	}
}
