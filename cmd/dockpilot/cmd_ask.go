// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuaysideAI/DockPilot/services/agent"
)

var (
	askContext []string
	askJSON    bool
	askVerbose bool
	askTimeout time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask \"<question>\"",
	Short: "Answer one question about dock operations",
	Example: `  dockpilot ask "How many delay events were there today?"
  dockpilot ask --context "focus on Fremont CA" "Which doors are inactive?"
  dockpilot ask --json "How many priority 1 inbound trucks?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAskCommand,
}

func init() {
	askCmd.Flags().StringArrayVar(&askContext, "context", nil, "hint carried into the run (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full structured result as JSON")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print run events as they happen")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 5*time.Minute, "overall run deadline")
	rootCmd.AddCommand(askCmd)
}

func runAskCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger(!askVerbose)
	defer logger.Close()

	var sink agent.EventSink = agent.NopSink{}
	if askVerbose {
		sink = agent.NewLoggingSink(logger)
	}

	loop, err := newAgentLoop(logger, sink)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	result, err := loop.Run(ctx, agent.RunInput{
		Question:     args[0],
		PriorContext: askContext,
	})
	if err != nil {
		return err
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printResult(result)
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func printResult(result *agent.RunResult) {
	switch result.State {
	case agent.StateCompleted:
		fmt.Println(result.Answer)
	case agent.StateExhausted:
		fmt.Println("No answer within the iteration budget.")
	case agent.StateError:
		fmt.Println("Run failed:", result.Error)
	}

	fmt.Fprintf(os.Stderr, "\n%s | iterations %d | corrections %d | tokens %d | %s\n",
		strings.ToLower(string(result.State)),
		result.Iterations,
		result.CorrectionAttempts,
		result.Usage.TotalTokens,
		result.Duration.Round(time.Millisecond))
}
