// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package session

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
	"github.com/teradata-labs/bobbin/pkg/conversation/convtest"
)

func testConfig() *config.Config {
	return (&config.ProjectFile{}).BaseConfig()
}

func TestRun(t *testing.T) {
	t.Run("captures the last agent message", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		last, err := Run(context.Background(), mgr, testConfig(), "do it", Options{})
		require.NoError(t, err)
		assert.Equal(t, "ok", last)
	})

	t.Run("submits exactly one input and one shutdown", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		_, err := Run(context.Background(), mgr, testConfig(), "do it", Options{})
		require.NoError(t, err)

		convs := mgr.Conversations()
		require.Len(t, convs, 1)
		ops := convs[0].Ops()
		require.Len(t, ops, 2)

		in, ok := ops[0].(conversation.UserInput)
		require.True(t, ok)
		text, _ := conversation.FirstText(in)
		assert.Equal(t, "do it", text)
		assert.IsType(t, conversation.Shutdown{}, ops[1])
	})

	t.Run("absent agent message yields empty result", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		mgr.Reply = func(*config.Config, string) string { return "" }
		last, err := Run(context.Background(), mgr, testConfig(), "do it", Options{})
		require.NoError(t, err)
		assert.Empty(t, last)
	})

	t.Run("creation failure is fatal", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		mgr.CreateErr = os.ErrPermission
		_, err := Run(context.Background(), mgr, testConfig(), "do it", Options{})
		assert.ErrorIs(t, err, os.ErrPermission)
	})

	t.Run("writes a config summary when asked", func(t *testing.T) {
		mgr := convtest.NewFakeManager()
		cfg := testConfig()
		cfg.Cwd = "/tmp/project"
		var summary bytes.Buffer
		_, err := Run(context.Background(), mgr, cfg, "do it", Options{Summary: &summary})
		require.NoError(t, err)
		assert.Contains(t, summary.String(), "model: claude-sonnet-4-6")
		assert.Contains(t, summary.String(), "workdir: /tmp/project")
	})
}
