// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package session drives one headless conversation from first prompt to
// shutdown and reports the last agent message.
package session

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
)

// Options tunes a single pump run.
type Options struct {
	// Summary, when non-nil, receives a human-readable description of the
	// session config before the first submit.
	Summary io.Writer
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Run opens a conversation for cfg, submits prompt as the first user input,
// and drains the event stream: on TaskComplete it records the last agent
// message and submits Shutdown, and it returns once ShutdownComplete
// arrives. Exactly one UserInput and one Shutdown are submitted per run.
func Run(ctx context.Context, mgr conversation.Manager, cfg *config.Config, prompt string, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	id, conv, err := mgr.NewConversation(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("new conversation: %w", err)
	}
	logger.Info("session started", zap.String("conversation_id", id), zap.String("model", cfg.Model))

	if opts.Summary != nil {
		writeSummary(opts.Summary, cfg)
	}

	// The reader forwards events until the stream ends; ShutdownComplete is
	// forwarded before the channel closes so the drain loop sees it.
	events := make(chan conversation.Event, 16)
	go func() {
		defer close(events)
		for {
			ev, err := conv.NextEvent(ctx)
			if err != nil {
				logger.Warn("event stream ended", zap.String("conversation_id", id), zap.Error(err))
				return
			}
			events <- ev
			if _, done := ev.Msg.(conversation.ShutdownComplete); done {
				return
			}
		}
	}()

	if err := conv.Submit(ctx, conversation.TextInput(prompt)); err != nil {
		return "", fmt.Errorf("submit input: %w", err)
	}

	var lastAgentMessage string
	for ev := range events {
		switch msg := ev.Msg.(type) {
		case conversation.TaskComplete:
			lastAgentMessage = msg.LastAgentMessage
			if err := conv.Submit(ctx, conversation.Shutdown{}); err != nil {
				return "", fmt.Errorf("submit shutdown: %w", err)
			}
		case conversation.StreamError:
			logger.Warn("conversation error", zap.String("conversation_id", id), zap.String("message", msg.Message))
		case conversation.ShutdownComplete:
			return lastAgentMessage, nil
		}
	}
	return "", fmt.Errorf("conversation %s ended before shutdown completed", id)
}

func writeSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "model: %s\n", cfg.Model)
	fmt.Fprintf(w, "provider: %s\n", cfg.ModelProviderID)
	fmt.Fprintf(w, "approval: %s\n", cfg.ApprovalPolicy)
	fmt.Fprintf(w, "sandbox: %s\n", cfg.SandboxMode)
	if cfg.Cwd != "" {
		fmt.Fprintf(w, "workdir: %s\n", cfg.Cwd)
	}
}
