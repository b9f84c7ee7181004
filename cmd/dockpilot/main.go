// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// dockpilot is the command-line front end of the dock-operations
// question answering agent.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuaysideAI/DockPilot/cmd/dockpilot/config"
)

var rootCmd = &cobra.Command{
	Use:   "dockpilot",
	Short: "Ask questions about dock operations in plain language",
	Long: `DockPilot answers questions about dock doors, assignments, events and
the inbound/outbound work queues. Each run plans, generates and
executes a query against the dock dataset, repairing failed queries
along the way, and reports one answer with full accounting.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return config.Load()
	}
}
