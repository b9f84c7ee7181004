// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "runs_total",
		Help:      "Completed runs by terminal state.",
	}, []string{"state"})

	metricRunIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "run_iterations",
		Help:      "Iterations consumed per run.",
		Buckets:   prometheus.LinearBuckets(1, 1, 12),
	})

	metricRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "run_duration_seconds",
		Help:      "Wall time per run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	metricToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "tool_calls_total",
		Help:      "Tool dispatches by tool name and outcome.",
	}, []string{"tool", "outcome"})

	metricCorrectionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "correction_attempts_total",
		Help:      "Correction attempts by diagnosed failure class.",
	}, []string{"class"})

	metricTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "model_tokens_total",
		Help:      "Model tokens spent, split by prompt and completion.",
	}, []string{"kind"})

	metricMalformedDecisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dockpilot",
		Subsystem: "agent",
		Name:      "malformed_decisions_total",
		Help:      "Decisions that parsed to neither a tool nor a final answer.",
	})
)
