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
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/teradata-labs/bobbin/internal/log"
	"github.com/teradata-labs/bobbin/pkg/conversation"
	"github.com/teradata-labs/bobbin/pkg/team"
)

// DefaultSelectorPrompt seeds the auxiliary selector conversation when a
// team configures no prompt of its own.
const DefaultSelectorPrompt = "You are a team orchestrator. Given the user message and the list of candidates, choose exactly one candidate to handle the next step. Return ONLY the candidate name, exactly as shown in the list. No explanations."

// TeamContext is the runtime state attached while the UI is inside a team.
// It is created on team switch, mutated only on the dispatcher, and
// replaced by the next switch.
type TeamContext struct {
	Name                 string
	Prompt               string
	Members              []string
	Mode                 string
	NextIdx              int
	TurnsTaken           int
	MaxTurns             *int
	SelectorModel        string
	SelectorPrompt       string
	AllowRepeatedSpeaker bool
	LastSpeaker          string
}

// NewTeamContext builds the runtime context for a loaded team definition.
func NewTeamContext(def *team.Definition) *TeamContext {
	return &TeamContext{
		Name:                 def.Name,
		Prompt:               def.Prompt,
		Members:              append([]string(nil), def.Members...),
		Mode:                 def.Mode,
		MaxTurns:             def.MaxTurns,
		SelectorModel:        def.SelectorModel,
		SelectorPrompt:       def.SelectorPrompt,
		AllowRepeatedSpeaker: def.AllowRepeatedSpeaker,
	}
}

// IsSelector reports whether the team routes through the LLM selector.
func (t *TeamContext) IsSelector() bool {
	return strings.EqualFold(t.Mode, team.ModeSelector)
}

// routeUserInput is the team router. It owns every user input submitted
// while a team context is active, except explicit @-tagged messages, and
// decides which member speaks next. It never submits the input to the
// current widget; the chosen member gets it as a fresh session's first
// input.
func (a *App) routeUserInput(text string) tea.Cmd {
	t := a.team

	if t.MaxTurns != nil && t.TurnsTaken >= *t.MaxTurns {
		return a.info(fmt.Sprintf("team %s reached max_turns=%d", t.Name, *t.MaxTurns))
	}
	if len(t.Members) == 0 {
		return a.info(fmt.Sprintf("team %s has no members", t.Name))
	}

	if t.IsSelector() {
		if t.SelectorModel == "" {
			return a.info("selector model not configured")
		}
		prompt := buildSelectorPrompt(t, text)
		go a.runSelector(t.SelectorModel, prompt, text)
		return nil
	}

	name := t.Members[t.NextIdx%len(t.Members)]
	t.NextIdx = (t.NextIdx + 1) % len(t.Members)
	t.TurnsTaken++
	t.LastSpeaker = name
	return cmdHandler(SwitchToAgentMsg{Name: name, InitialPrompt: text})
}

// handleSelectorResult applies a selector task's answer on the dispatcher.
func (a *App) handleSelectorResult(msg selectorResultMsg) tea.Cmd {
	if msg.err != nil {
		return a.info(fmt.Sprintf("selector failed: %v", msg.err))
	}
	if msg.candidate == "" {
		return a.info("selector returned no choice")
	}
	if a.team != nil {
		a.team.TurnsTaken++
		a.team.LastSpeaker = msg.candidate
	}
	return cmdHandler(SwitchToAgentMsg{Name: msg.candidate, InitialPrompt: msg.userMessage})
}

// buildSelectorPrompt renders the selector conversation's input: the team's
// selector prompt (or the default), the user message, the candidate list,
// and the repeat-speaker policy.
func buildSelectorPrompt(t *TeamContext, userMessage string) string {
	base := t.SelectorPrompt
	if base == "" {
		base = DefaultSelectorPrompt
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Team: %s\n", t.Name)
	fmt.Fprintf(&b, "User Message:\n%s\n\n", userMessage)
	b.WriteString("Candidates:\n")
	for _, member := range t.Members {
		fmt.Fprintf(&b, "- %s\n", member)
	}
	b.WriteString("\nPolicy:\n")
	if !t.AllowRepeatedSpeaker {
		b.WriteString("- Do not choose the same speaker twice in a row.\n")
	}
	if t.LastSpeaker != "" {
		fmt.Fprintf(&b, "- The last speaker was: %s\n", t.LastSpeaker)
	}
	b.WriteString("\nAnswer with exactly one candidate name from the list above.")
	return b.String()
}

// runSelector drives the auxiliary selector conversation off the
// dispatcher. The base config is reused with only the model swapped. The
// first agent message is the verdict; it is not validated against the
// member list, an unknown name surfaces later as an agent load failure.
func (a *App) runSelector(model, prompt, userMessage string) {
	cfg := a.baseConfig.Clone()
	cfg.Model = model

	_, conv, err := a.mgr.NewConversation(a.ctx, cfg)
	if err != nil {
		a.Send(selectorResultMsg{err: err})
		return
	}
	if err := conv.Submit(a.ctx, conversation.TextInput(prompt)); err != nil {
		a.Send(selectorResultMsg{err: err})
		return
	}

	for {
		ev, err := conv.NextEvent(a.ctx)
		if err != nil {
			a.Send(selectorResultMsg{err: err})
			return
		}
		switch msg := ev.Msg.(type) {
		case conversation.AgentMessage:
			candidate := strings.TrimSpace(msg.Message)
			if err := conv.Submit(a.ctx, conversation.Shutdown{}); err != nil {
				log.Warn("selector shutdown failed", zap.Error(err))
			}
			a.Send(selectorResultMsg{candidate: candidate, userMessage: userMessage})
			return
		case conversation.TaskComplete, conversation.ShutdownComplete:
			// The task ended without an agent message.
			a.Send(selectorResultMsg{userMessage: userMessage})
			return
		}
	}
}
