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
package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/teradata-labs/bobbin/pkg/orchestration"
)

// WorkflowContext tracks which step of a UI-driven workflow is active. It
// is owned and mutated only by the dispatcher.
type WorkflowContext struct {
	Name  string
	Steps []orchestration.Step
	Index int
}

// startWorkflow loads the named workflow and begins its first step. Load
// failures surface as history lines, never as a dispatcher abort.
func (a *App) startWorkflow(name string) tea.Cmd {
	if a.projectDir == "" {
		return a.info("no project config directory discovered")
	}
	wf, err := orchestration.LoadWorkflow(a.projectDir, name)
	if err != nil {
		return a.info(fmt.Sprintf("workflow %s failed to load: %v", name, err))
	}
	if len(wf.Steps) == 0 {
		return a.info(fmt.Sprintf("workflow %s has no steps", wf.Name))
	}
	a.workflow = &WorkflowContext{Name: wf.Name, Steps: wf.Steps}
	return a.startWorkflowStep()
}

// startWorkflowStep dispatches the current step. Both step kinds go through
// SwitchToAgent; a team id defers to the team-switch path there.
func (a *App) startWorkflowStep() tea.Cmd {
	step := a.workflow.Steps[a.workflow.Index]
	return cmdHandler(SwitchToAgentMsg{Name: step.ID, InitialPrompt: step.Prompt})
}

// advanceWorkflow moves the workflow forward on each task completion and
// clears the context after the final step.
func (a *App) advanceWorkflow() tea.Cmd {
	wf := a.workflow
	wf.Index++
	if wf.Index < len(wf.Steps) {
		return a.startWorkflowStep()
	}
	a.workflow = nil
	return a.info(fmt.Sprintf("workflow %s completed", wf.Name))
}
