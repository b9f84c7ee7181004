// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuaysideAI/DockPilot/services/agent/exec"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the queryable dock dataset catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := exec.NewDockDataset().Catalog(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(cat.Describe())
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools available to the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := tools.NewDefaultRegistry(exec.NewDockDataset(), llm.NewMockClient())
		if err != nil {
			return err
		}
		fmt.Print(registry.Describe())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(toolsCmd)
}
