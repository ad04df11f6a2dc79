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
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/teradata-labs/bobbin/internal/log"
	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
)

// SessionView is the chat widget for one conversation session. A fresh one
// is spawned on every agent switch; the previous widget's conversation is
// shut down and its remaining events are dropped by the dispatcher.
type SessionView struct {
	id        string
	agentName string
	ctx       context.Context
	conv      conversation.Conversation
	send      func(tea.Msg)

	composer   textarea.Model
	transcript []string
	partial    string
	working    bool
	closed     atomic.Bool
	keys       KeyMap
}

// newSessionView opens a conversation for cfg and starts its event reader.
// initialPrompt, when non-empty, is submitted as the session's first user
// input (routing has already happened by the time a widget exists).
func newSessionView(ctx context.Context, mgr conversation.Manager, cfg *config.Config, agentName, initialPrompt string, send func(tea.Msg)) (*SessionView, error) {
	id, conv, err := mgr.NewConversation(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new conversation: %w", err)
	}

	composer := textarea.New()
	composer.Placeholder = "Send a message (@agent to bypass routing, / for commands)"
	composer.Focus()

	v := &SessionView{
		id:        id,
		agentName: agentName,
		ctx:       ctx,
		conv:      conv,
		send:      send,
		composer:  composer,
		keys:      DefaultKeyMap(),
	}
	go v.readEvents()

	if initialPrompt != "" {
		v.transcript = append(v.transcript, "> "+initialPrompt)
		v.submit(conversation.TextInput(initialPrompt))
	}
	return v, nil
}

// ID identifies the widget; the dispatcher drops events from stale ids.
func (v *SessionView) ID() string {
	return v.id
}

// readEvents forwards the conversation's stream into the dispatcher until
// the stream ends.
func (v *SessionView) readEvents() {
	for {
		ev, err := v.conv.NextEvent(v.ctx)
		if err != nil {
			if !v.closed.Load() {
				log.Warn("session stream ended", zap.String("session_id", v.id), zap.Error(err))
				v.send(InsertHistoryMsg{Lines: []string{fmt.Sprintf("session %s ended: %v", v.id, err)}})
			}
			return
		}
		v.send(ConversationEventMsg{ViewID: v.id, Event: ev})
		if _, done := ev.Msg.(conversation.ShutdownComplete); done {
			return
		}
	}
}

// submit sends an op without blocking the dispatcher.
func (v *SessionView) submit(op conversation.Op) {
	go func() {
		if err := v.conv.Submit(v.ctx, op); err != nil && !v.closed.Load() {
			v.send(InsertHistoryMsg{Lines: []string{fmt.Sprintf("submit failed: %v", err)}})
		}
	}()
}

// HandleKey feeds a key press to the composer. Enter proposes the composer
// text as a user input op; the dispatcher decides whether it reaches this
// session or a team member.
func (v *SessionView) HandleKey(msg tea.KeyPressMsg) tea.Cmd {
	if key.Matches(msg, v.keys.Submit) {
		text := strings.TrimSpace(v.composer.Value())
		if text == "" {
			return nil
		}
		v.composer.Reset()
		return cmdHandler(ConversationOpMsg{Op: conversation.TextInput(text)})
	}
	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return cmd
}

// HandlePaste feeds pasted text to the composer.
func (v *SessionView) HandlePaste(msg tea.PasteMsg) {
	v.composer, _ = v.composer.Update(msg)
}

// HandleEvent applies one conversation event to the widget.
func (v *SessionView) HandleEvent(ev conversation.Event) {
	switch msg := ev.Msg.(type) {
	case conversation.TaskStarted:
		v.working = true
	case conversation.AgentMessageDelta:
		v.partial += msg.Delta
	case conversation.AgentMessage:
		v.partial = ""
		v.transcript = append(v.transcript, msg.Message)
	case conversation.TaskComplete:
		v.working = false
		v.partial = ""
	case conversation.BackgroundNotice:
		v.transcript = append(v.transcript, msg.Message)
	case conversation.StreamError:
		v.transcript = append(v.transcript, "error: "+msg.Message)
	case conversation.ShutdownComplete:
		v.working = false
	}
}

// Submit hands an op to this session's conversation. The dispatcher calls
// it for ops the team router let through.
func (v *SessionView) Submit(op conversation.Op) {
	if in, ok := op.(conversation.UserInput); ok {
		if text, ok := conversation.FirstText(in); ok {
			v.transcript = append(v.transcript, "> "+text)
		}
	}
	v.submit(op)
}

// InterruptTask cancels whatever the session is working on.
func (v *SessionView) InterruptTask() {
	if v.working {
		v.submit(conversation.Interrupt{})
	}
}

// ComposerEmpty reports whether the composer holds no text.
func (v *SessionView) ComposerEmpty() bool {
	return strings.TrimSpace(v.composer.Value()) == ""
}

// Close shuts the session down. Events arriving afterwards are stale and
// the dispatcher drops them by id. A widget without a conversation has
// nothing to shut down.
func (v *SessionView) Close() {
	if v.closed.CompareAndSwap(false, true) && v.conv != nil {
		v.submit(conversation.Shutdown{})
	}
}

// Working reports whether a task is in flight.
func (v *SessionView) Working() bool {
	return v.working
}

// AgentName names the agent this session runs as.
func (v *SessionView) AgentName() string {
	return v.agentName
}

// Transcript returns the rendered lines, including any streaming partial.
func (v *SessionView) Transcript() []string {
	lines := append([]string(nil), v.transcript...)
	if v.partial != "" {
		lines = append(lines, v.partial)
	}
	return lines
}

// ComposerView renders the composer.
func (v *SessionView) ComposerView() string {
	return v.composer.View()
}
