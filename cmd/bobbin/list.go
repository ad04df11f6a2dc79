// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/bobbin/pkg/agent"
	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/orchestration"
	"github.com/teradata-labs/bobbin/pkg/team"
)

// requireProjectDir resolves the project configuration directory or fails.
func requireProjectDir() (string, error) {
	dir, err := config.FindProjectDir(cwdFlag)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", orchestration.ErrNoProject
	}
	return dir, nil
}

func printNames(cmd *cobra.Command, names []string) {
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the project's agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := requireProjectDir()
		if err != nil {
			return err
		}
		names, err := agent.List(dir)
		if err != nil {
			return err
		}
		printNames(cmd, names)
		return nil
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the project's teams",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := requireProjectDir()
		if err != nil {
			return err
		}
		names, err := team.List(dir)
		if err != nil {
			return err
		}
		printNames(cmd, names)
		return nil
	},
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List the project's workflows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := requireProjectDir()
		if err != nil {
			return err
		}
		names, err := orchestration.ListWorkflows(dir)
		if err != nil {
			return err
		}
		printNames(cmd, names)
		return nil
	},
}
