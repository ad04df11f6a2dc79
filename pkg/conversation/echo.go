// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/teradata-labs/bobbin/pkg/config"
)

// ErrConversationClosed is returned once a conversation's stream has ended.
var ErrConversationClosed = errors.New("conversation closed")

// EchoManager is the offline development backend: every task completes
// immediately with a canned acknowledgement of the input. It exists so the
// CLI and workflows can be exercised end to end before a model provider is
// wired up.
type EchoManager struct{}

// NewEchoManager creates the offline backend.
func NewEchoManager() *EchoManager {
	return &EchoManager{}
}

// NewConversation implements Manager.
func (m *EchoManager) NewConversation(ctx context.Context, cfg *config.Config) (string, Conversation, error) {
	conv := &echoConversation{
		id:     uuid.NewString(),
		model:  cfg.Model,
		events: make(chan Event, 16),
	}
	return conv.id, conv, nil
}

type echoConversation struct {
	id    string
	model string

	mu     sync.Mutex
	seq    int
	closed bool
	events chan Event
}

func (c *echoConversation) Submit(ctx context.Context, op Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConversationClosed
	}
	switch o := op.(type) {
	case UserInput:
		text, _ := FirstText(o)
		c.emit(TaskStarted{})
		answer := fmt.Sprintf("[%s offline] %s", c.model, text)
		c.emit(AgentMessage{Message: answer})
		c.emit(TaskComplete{LastAgentMessage: answer})
	case Shutdown:
		c.emit(ShutdownComplete{})
		c.closed = true
		close(c.events)
	case Interrupt:
		// Tasks complete synchronously; nothing to cancel.
	}
	return nil
}

func (c *echoConversation) emit(msg EventMsg) {
	c.seq++
	c.events <- Event{ID: fmt.Sprintf("%s-%d", c.id, c.seq), Msg: msg}
}

func (c *echoConversation) NextEvent(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case ev, ok := <-c.events:
		if !ok {
			return Event{}, ErrConversationClosed
		}
		return ev, nil
	}
}
