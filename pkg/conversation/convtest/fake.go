// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package convtest provides a scripted conversation backend for tests.
package convtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
)

// ErrClosed is returned by NextEvent after the stream has ended.
var ErrClosed = errors.New("conversation closed")

// ReplyFunc computes the assistant reply for a submitted user input.
// Returning "" makes the task complete without an assistant message.
type ReplyFunc func(cfg *config.Config, input string) string

// FakeManager is a conversation.Manager whose conversations answer every
// user input with a scripted reply and honor the shutdown handshake.
type FakeManager struct {
	mu sync.Mutex

	// Reply computes each conversation's answer. Defaults to "ok".
	Reply ReplyFunc
	// CreateErr, when set, makes NewConversation fail.
	CreateErr error

	convs []*FakeConversation
}

// NewFakeManager returns a manager whose conversations always reply "ok".
func NewFakeManager() *FakeManager {
	return &FakeManager{}
}

// NewConversation implements conversation.Manager.
func (m *FakeManager) NewConversation(ctx context.Context, cfg *config.Config) (string, conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", nil, m.CreateErr
	}
	reply := m.Reply
	if reply == nil {
		reply = func(*config.Config, string) string { return "ok" }
	}
	conv := &FakeConversation{
		ID:     uuid.NewString(),
		cfg:    cfg.Clone(),
		reply:  reply,
		events: make(chan conversation.Event, 32),
	}
	m.convs = append(m.convs, conv)
	return conv.ID, conv, nil
}

// Conversations returns every conversation created so far, in order.
func (m *FakeManager) Conversations() []*FakeConversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*FakeConversation(nil), m.convs...)
}

// FakeConversation is a single scripted dialog.
type FakeConversation struct {
	ID string

	mu     sync.Mutex
	cfg    *config.Config
	reply  ReplyFunc
	ops    []conversation.Op
	seq    int
	closed bool
	events chan conversation.Event
}

// Submit implements conversation.Conversation.
func (c *FakeConversation) Submit(ctx context.Context, op conversation.Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.ops = append(c.ops, op)
	switch o := op.(type) {
	case conversation.UserInput:
		text, _ := conversation.FirstText(o)
		answer := c.reply(c.cfg, text)
		c.emit(conversation.TaskStarted{})
		if answer != "" {
			c.emit(conversation.AgentMessage{Message: answer})
		}
		c.emit(conversation.TaskComplete{LastAgentMessage: answer})
	case conversation.Shutdown:
		c.emit(conversation.ShutdownComplete{})
		c.closed = true
		close(c.events)
	case conversation.Interrupt:
		// Nothing in flight to cancel.
	}
	return nil
}

func (c *FakeConversation) emit(msg conversation.EventMsg) {
	c.seq++
	c.events <- conversation.Event{ID: fmt.Sprintf("%s-%d", c.ID, c.seq), Msg: msg}
}

// NextEvent implements conversation.Conversation.
func (c *FakeConversation) NextEvent(ctx context.Context) (conversation.Event, error) {
	select {
	case <-ctx.Done():
		return conversation.Event{}, ctx.Err()
	case ev, ok := <-c.events:
		if !ok {
			return conversation.Event{}, ErrClosed
		}
		return ev, nil
	}
}

// Config returns the config the conversation was created with.
func (c *FakeConversation) Config() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Ops returns every op submitted so far, in order.
func (c *FakeConversation) Ops() []conversation.Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]conversation.Op(nil), c.ops...)
}
