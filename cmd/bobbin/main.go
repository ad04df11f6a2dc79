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
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/teradata-labs/bobbin/internal/log"
	"github.com/teradata-labs/bobbin/internal/tui"
	"github.com/teradata-labs/bobbin/internal/version"
	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
)

var cwdFlag string

var rootCmd = &cobra.Command{
	Use:           "bobbin",
	Short:         "Bobbin - terminal coding assistant with agent teams and workflows",
	Long:          `Bobbin is a terminal coding assistant. It discovers agent, team, and workflow definitions from the project's .bobbin directory, routes chat turns across team members, and runs multi-step workflows interactively or headless.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cwdFlag, "cd", "C", "", "run as if bobbin was started in this directory")

	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(workflowsCmd)
}

func main() {
	log.Setup(config.GetDataDir())
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newConversationManager returns the process's conversation backend. Until
// a model provider is wired in, the offline echo backend keeps the CLI and
// workflows exercisable.
func newConversationManager() conversation.Manager {
	log.Warn("no conversation backend configured; using offline echo backend")
	return conversation.NewEchoManager()
}

func runChat(cmd *cobra.Command, args []string) error {
	projectDir, err := config.FindProjectDir(cwdFlag)
	if err != nil {
		return err
	}
	pf := &config.ProjectFile{}
	if projectDir != "" {
		if pf, err = config.LoadProjectFile(projectDir); err != nil {
			return err
		}
	}

	app := tui.New(cmd.Context(), tui.Options{
		Manager:    newConversationManager(),
		Cwd:        cwdFlag,
		ProjectDir: projectDir,
		BaseConfig: pf.BaseConfig(),
		ProjectMCP: pf.MCPServers,
	})
	defer app.Shutdown()

	p := tea.NewProgram(app, tea.WithEnvironment(os.Environ()))
	go app.Subscribe(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
