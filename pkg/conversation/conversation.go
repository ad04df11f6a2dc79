// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package conversation defines the contract between the orchestration core
// and the LLM conversation backend. The backend creates a session from a
// composed config and yields an ordered event stream; everything behind
// Manager is opaque to this module.
package conversation

import (
	"context"

	"github.com/teradata-labs/bobbin/pkg/config"
)

// Manager creates conversations. A single manager is shared by every
// session the process opens; it must outlive all of them.
type Manager interface {
	// NewConversation opens a session for the given config and returns its
	// id together with a handle for submitting ops and draining events.
	NewConversation(ctx context.Context, cfg *config.Config) (string, Conversation, error)
}

// Conversation is one LLM dialog instance. Submit and NextEvent may be
// called from different goroutines; events arrive in the order the
// conversation emitted them.
type Conversation interface {
	Submit(ctx context.Context, op Op) error
	NextEvent(ctx context.Context) (Event, error)
}

// Event is a single item on a conversation's event stream.
type Event struct {
	ID  string
	Msg EventMsg
}

// EventMsg is the payload of an Event.
type EventMsg interface {
	isEventMsg()
}

// TaskStarted reports that the agent began working on the submitted input.
type TaskStarted struct{}

// AgentMessage carries one complete assistant message.
type AgentMessage struct {
	Message string
}

// AgentMessageDelta carries a streaming fragment of an assistant message.
type AgentMessageDelta struct {
	Delta string
}

// TaskComplete reports that the agent finished the current task.
// LastAgentMessage is empty when the task produced no assistant message.
type TaskComplete struct {
	LastAgentMessage string
}

// BackgroundNotice carries a diagnostic line the backend wants surfaced.
type BackgroundNotice struct {
	Message string
}

// StreamError reports a recoverable backend error.
type StreamError struct {
	Message string
}

// ShutdownComplete is the final event on a stream; no events follow it.
type ShutdownComplete struct{}

func (TaskStarted) isEventMsg()       {}
func (AgentMessage) isEventMsg()      {}
func (AgentMessageDelta) isEventMsg() {}
func (TaskComplete) isEventMsg()      {}
func (BackgroundNotice) isEventMsg()  {}
func (StreamError) isEventMsg()       {}
func (ShutdownComplete) isEventMsg()  {}

// Op is a submission into a conversation.
type Op interface {
	isOp()
}

// UserInput submits user-authored input items.
type UserInput struct {
	Items []InputItem
}

// Interrupt aborts the task the conversation is currently running.
type Interrupt struct{}

// Shutdown asks the conversation to terminate its stream. The backend
// answers with ShutdownComplete once teardown is done.
type Shutdown struct{}

func (UserInput) isOp() {}
func (Interrupt) isOp() {}
func (Shutdown) isOp()  {}

// InputItem is one element of a UserInput op.
type InputItem interface {
	isInputItem()
}

// Text is a plain-text input item.
type Text struct {
	Text string
}

func (Text) isInputItem() {}

// TextInput builds a UserInput op holding a single text item.
func TextInput(text string) UserInput {
	return UserInput{Items: []InputItem{Text{Text: text}}}
}

// FirstText returns the text of the first input item, if it is a Text item.
func FirstText(op UserInput) (string, bool) {
	if len(op.Items) == 0 {
		return "", false
	}
	t, ok := op.Items[0].(Text)
	return t.Text, ok
}
