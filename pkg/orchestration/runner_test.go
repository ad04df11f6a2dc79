// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package orchestration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
	"github.com/teradata-labs/bobbin/pkg/conversation/convtest"
)

// writeTree lays out a project configuration directory from rel->content.
func writeTree(t *testing.T, files map[string]string) (workDir, projectDir string) {
	t.Helper()
	workDir = t.TempDir()
	projectDir = filepath.Join(workDir, config.ProjectDirName)
	for rel, content := range files {
		path := filepath.Join(projectDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return workDir, projectDir
}

func TestRunnerEmptyWorkflow(t *testing.T) {
	workDir, _ := writeTree(t, map[string]string{
		"workflows/empty.toml": `steps = []`,
	})
	mgr := convtest.NewFakeManager()
	var stdout bytes.Buffer

	err := NewRunner(mgr, nil).Run(context.Background(), "empty", Options{Cwd: workDir, Stdout: &stdout, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, "Workflow 'empty' has no steps\n", stdout.String())
	assert.Empty(t, mgr.Conversations())
}

func TestRunnerSingleAgentStep(t *testing.T) {
	workDir, _ := writeTree(t, map[string]string{
		"agents/dev/config.toml": `model = "claude-opus-4-6"`,
		"workflows/greet.toml": `
steps = ["greet"]

[step.greet]
type = "agent"
id = "dev"
prompt = "hi"
`,
	})
	mgr := convtest.NewFakeManager()
	var stdout, stderr bytes.Buffer

	err := NewRunner(mgr, nil).Run(context.Background(), "greet", Options{Cwd: workDir, Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", stdout.String())
	assert.Contains(t, stderr.String(), "model: claude-opus-4-6")

	convs := mgr.Conversations()
	require.Len(t, convs, 1)
	cfg := convs[0].Config()
	assert.Equal(t, "claude-opus-4-6", cfg.Model)
	assert.Equal(t, "hi", cfg.BaseInstructions)
	assert.Equal(t, config.ApprovalNever, cfg.ApprovalPolicy)

	ops := convs[0].Ops()
	require.Len(t, ops, 2)
	in, ok := ops[0].(conversation.UserInput)
	require.True(t, ok)
	text, _ := conversation.FirstText(in)
	assert.Equal(t, "hi", text)
	assert.IsType(t, conversation.Shutdown{}, ops[1])
}

func TestRunnerTeamStepPromptMerge(t *testing.T) {
	workDir, _ := writeTree(t, map[string]string{
		"agents/dev/config.toml": "",
		"agents/dev/AGENTS.md":   "A",
		"teams/squad.toml":       `members = ["dev"]`,
		"teams/TEAM.md":          "T",
		"workflows/plan.toml": `
steps = ["plan"]

[step.plan]
type = "team"
id = "squad"
`,
	})
	mgr := convtest.NewFakeManager()

	err := NewRunner(mgr, nil).Run(context.Background(), "plan", Options{Cwd: workDir, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	convs := mgr.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "T\n\nA", convs[0].Config().BaseInstructions)
}

func TestRunnerTeamStepNoMembers(t *testing.T) {
	workDir, _ := writeTree(t, map[string]string{
		"teams/empty.toml": `members = []`,
		"workflows/plan.toml": `
steps = ["plan"]

[step.plan]
type = "team"
id = "empty"
`,
	})

	err := NewRunner(convtest.NewFakeManager(), nil).Run(context.Background(), "plan", Options{Cwd: workDir, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	assert.ErrorIs(t, err, ErrNoMembers)
}

func TestRunnerSandboxFlags(t *testing.T) {
	files := map[string]string{
		"agents/dev/config.toml": "",
		"workflows/go.toml": `
steps = ["go"]

[step.go]
type = "agent"
id = "dev"
`,
	}

	t.Run("full auto", func(t *testing.T) {
		workDir, _ := writeTree(t, files)
		mgr := convtest.NewFakeManager()
		err := NewRunner(mgr, nil).Run(context.Background(), "go", Options{Cwd: workDir, FullAuto: true, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		require.NoError(t, err)
		assert.Equal(t, config.SandboxWorkspaceWrite, mgr.Conversations()[0].Config().SandboxMode)
	})

	t.Run("bypass", func(t *testing.T) {
		workDir, _ := writeTree(t, files)
		mgr := convtest.NewFakeManager()
		err := NewRunner(mgr, nil).Run(context.Background(), "go", Options{Cwd: workDir, DangerouslyBypass: true, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		require.NoError(t, err)
		assert.Equal(t, config.SandboxDangerFullAccess, mgr.Conversations()[0].Config().SandboxMode)
	})

	t.Run("overrides apply", func(t *testing.T) {
		workDir, _ := writeTree(t, files)
		mgr := convtest.NewFakeManager()
		err := NewRunner(mgr, nil).Run(context.Background(), "go", Options{
			Cwd:       workDir,
			Overrides: []string{"model=claude-haiku-4-5"},
			Stdout:    &bytes.Buffer{},
			Stderr:    &bytes.Buffer{},
		})
		require.NoError(t, err)
		assert.Equal(t, "claude-haiku-4-5", mgr.Conversations()[0].Config().Model)
	})
}

func TestRunnerOutputs(t *testing.T) {
	files := map[string]string{
		"agents/dev/config.toml": "",
		"workflows/go.toml": `
steps = ["go"]

[step.go]
type = "agent"
id = "dev"
prompt = "hi"
`,
	}

	t.Run("json emits one object", func(t *testing.T) {
		workDir, _ := writeTree(t, files)
		var stdout, stderr bytes.Buffer
		err := NewRunner(convtest.NewFakeManager(), nil).Run(context.Background(), "go", Options{Cwd: workDir, JSON: true, Stdout: &stdout, Stderr: &stderr})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"last_message","text":"ok"}`, stdout.String())
		assert.Empty(t, stderr.String(), "no config summary in JSON mode")
	})

	t.Run("last message file", func(t *testing.T) {
		workDir, _ := writeTree(t, files)
		out := filepath.Join(t.TempDir(), "last.txt")
		err := NewRunner(convtest.NewFakeManager(), nil).Run(context.Background(), "go", Options{Cwd: workDir, OutputLastMessage: out, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(data))
	})
}

func TestRunnerFailures(t *testing.T) {
	t.Run("no project directory", func(t *testing.T) {
		err := NewRunner(convtest.NewFakeManager(), nil).Run(context.Background(), "any", Options{Cwd: t.TempDir(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		assert.ErrorIs(t, err, ErrNoProject)
	})

	t.Run("session creation failure aborts", func(t *testing.T) {
		workDir, _ := writeTree(t, map[string]string{
			"agents/dev/config.toml": "",
			"workflows/go.toml": `
steps = ["go"]

[step.go]
type = "agent"
id = "dev"
`,
		})
		mgr := convtest.NewFakeManager()
		mgr.CreateErr = os.ErrPermission
		err := NewRunner(mgr, nil).Run(context.Background(), "go", Options{Cwd: workDir, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		assert.ErrorIs(t, err, os.ErrPermission)
	})
}

func TestRunnerMultiStep(t *testing.T) {
	workDir, _ := writeTree(t, map[string]string{
		"agents/a/config.toml": "",
		"agents/b/config.toml": "",
		"workflows/two.toml": `
steps = ["first", "second"]

[step.first]
type = "agent"
id = "a"
prompt = "one"

[step.second]
type = "agent"
id = "b"
prompt = "two"
`,
	})
	mgr := convtest.NewFakeManager()
	mgr.Reply = func(cfg *config.Config, input string) string { return "done " + input }
	var stdout bytes.Buffer

	err := NewRunner(mgr, nil).Run(context.Background(), "two", Options{Cwd: workDir, Stdout: &stdout, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	convs := mgr.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, "one", convs[0].Config().BaseInstructions)
	assert.Equal(t, "two", convs[1].Config().BaseInstructions)
	assert.Equal(t, "done two\n", stdout.String(), "final output is the last step's message")
}
