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
	"github.com/spf13/cobra"

	"github.com/teradata-labs/bobbin/internal/log"
	"github.com/teradata-labs/bobbin/pkg/orchestration"
)

var (
	workflowJSON       bool
	workflowOutputLast string
	workflowFullAuto   bool
	workflowBypass     bool
	workflowProfile    string
	workflowOverrides  []string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run and inspect workflows",
}

var workflowRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a workflow headless, one session per step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := orchestration.NewRunner(newConversationManager(), log.Logger())
		return runner.Run(cmd.Context(), args[0], orchestration.Options{
			Cwd:               cwdFlag,
			JSON:              workflowJSON,
			OutputLastMessage: workflowOutputLast,
			FullAuto:          workflowFullAuto,
			DangerouslyBypass: workflowBypass,
			Profile:           workflowProfile,
			Overrides:         workflowOverrides,
		})
	},
}

func init() {
	workflowRunCmd.Flags().BoolVar(&workflowJSON, "json", false, "emit the last message as a JSON object on stdout")
	workflowRunCmd.Flags().StringVar(&workflowOutputLast, "output-last-message", "", "write the last agent message to this file")
	workflowRunCmd.Flags().BoolVar(&workflowFullAuto, "full-auto", false, "run with a writable workspace sandbox")
	workflowRunCmd.Flags().BoolVar(&workflowBypass, "dangerously-bypass-approvals-and-sandbox", false, "disable sandboxing entirely")
	workflowRunCmd.Flags().StringVarP(&workflowProfile, "profile", "p", "", "config profile to apply")
	workflowRunCmd.Flags().StringArrayVarP(&workflowOverrides, "config", "c", nil, "config override KEY=VALUE (repeatable)")

	workflowCmd.AddCommand(workflowRunCmd)
}
