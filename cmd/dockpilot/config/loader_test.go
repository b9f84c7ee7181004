// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "ollama", cfg.Model.Type)
	assert.Equal(t, 12, cfg.Loop.MaxIterations)
	assert.Equal(t, 3, cfg.Loop.MaxCorrectionAttempts)
	assert.Equal(t, 6, cfg.Backoff.MaxRetries)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dockpilot.yaml")
	require.NoError(t, createDefault(path))

	data, err := yaml.Marshal(DefaultConfig())
	require.NoError(t, err)

	var cfg DockPilotConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigPartialFile(t *testing.T) {
	var cfg DockPilotConfig
	require.NoError(t, yaml.Unmarshal([]byte("model:\n  type: openai\n"), &cfg))
	assert.Equal(t, "openai", cfg.Model.Type)
	// Unset sections stay zero; callers apply their own defaults.
	assert.Zero(t, cfg.Loop.MaxIterations)
}
