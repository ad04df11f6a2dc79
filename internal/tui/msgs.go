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
// Package tui hosts the application event dispatcher and the orchestration
// state that lives only while the UI is attached: the active team context,
// the active workflow context, and the session widget.
package tui

import (
	"time"

	"github.com/teradata-labs/bobbin/pkg/conversation"
)

// InsertHistoryMsg appends lines to the history pane.
type InsertHistoryMsg struct {
	Lines []string
}

// RequestRedrawMsg asks the frame scheduler for a debounced redraw.
type RequestRedrawMsg struct{}

// ScheduleFrameMsg asks the frame scheduler for a redraw after a delay
// (animation frames).
type ScheduleFrameMsg struct {
	After time.Duration
}

// RedrawMsg is emitted by the frame scheduler when a pending deadline
// fires; the runtime re-renders on it.
type RedrawMsg struct{}

// StartCommitAnimationMsg starts the commit ticker.
type StartCommitAnimationMsg struct{}

// StopCommitAnimationMsg stops the commit ticker.
type StopCommitAnimationMsg struct{}

// CommitTickMsg is posted by the commit ticker every interval while the
// animation is running.
type CommitTickMsg struct{}

// ConversationEventMsg carries one event from a session's stream. ViewID
// identifies the session widget the event belongs to; events from replaced
// widgets are dropped by the dispatcher.
type ConversationEventMsg struct {
	ViewID string
	Event  conversation.Event
}

// ConversationOpMsg carries an op a widget wants submitted. The dispatcher
// gives the team router first refusal before the op reaches the widget's
// conversation.
type ConversationOpMsg struct {
	Op conversation.Op
}

// DiffResultMsg carries the output of a background diff helper.
type DiffResultMsg struct {
	Diff string
	Err  error
}

// DispatchCommandMsg is a parsed slash command.
type DispatchCommandMsg struct {
	Name string
	Args string
}

// SwitchToAgentMsg replaces the active session widget with a fresh session
// for the named agent. A name that resolves to a team performs the team
// switch instead. InitialPrompt, when non-empty, becomes the new session's
// first user input.
type SwitchToAgentMsg struct {
	Name          string
	InitialPrompt string
}

// RunWorkflowMsg starts the named workflow inside the UI.
type RunWorkflowMsg struct {
	Name string
}

// StartFileSearchMsg asks for a background file search.
type StartFileSearchMsg struct {
	Query string
}

// FileSearchResultMsg carries file search matches; the dispatcher appends
// them to history.
type FileSearchResultMsg struct {
	Query   string
	Matches []string
}

// OnboardingCompleteMsg reports that the onboarding flow finished.
type OnboardingCompleteMsg struct{}

// ExitRequestMsg asks the dispatcher to quit.
type ExitRequestMsg struct{}

// selectorResultMsg is posted by a selector task when the auxiliary
// conversation answers (or fails).
type selectorResultMsg struct {
	candidate   string
	userMessage string
	err         error
}
