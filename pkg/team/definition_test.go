// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package team

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTeam(t *testing.T, projectDir, name, content string) {
	t.Helper()
	dir := filepath.Join(projectDir, "teams")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".toml"), []byte(content), 0o644))
}

func TestListTeams(t *testing.T) {
	t.Run("missing teams dir is empty", func(t *testing.T) {
		names, err := List(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("stems sorted, non-toml skipped", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "zeta", "")
		writeTeam(t, projectDir, "alpha", "")
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "teams", "TEAM.md"), []byte("prompt"), 0o644))

		names, err := List(projectDir)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "zeta"}, names)
	})
}

func TestLoadTeam(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "squad", `members = ["a", "b"]`)

		def, err := Load(projectDir, "squad")
		require.NoError(t, err)
		assert.Equal(t, "squad", def.Name)
		assert.Equal(t, ModeRoundRobin, def.Mode)
		assert.Equal(t, []string{"a", "b"}, def.Members)
		assert.Nil(t, def.MaxTurns)
		assert.False(t, def.AllowRepeatedSpeaker)
		assert.Empty(t, def.Prompt)
	})

	t.Run("missing team file fails", func(t *testing.T) {
		_, err := Load(t.TempDir(), "ghost")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown mode fails", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "squad", `mode = "chaos"`)
		_, err := Load(projectDir, "squad")
		assert.ErrorIs(t, err, ErrUnknownMode)
	})

	t.Run("default prompt file adjacent to the team file", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "squad", "")
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "teams", "TEAM.md"), []byte(" shared prompt \n"), 0o644))

		def, err := Load(projectDir, "squad")
		require.NoError(t, err)
		assert.Equal(t, "shared prompt", def.Prompt)
	})

	t.Run("relative prompt file resolves against the team dir", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "squad", `prompt_file = "squad-prompt.md"`)
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "teams", "squad-prompt.md"), []byte("custom"), 0o644))

		def, err := Load(projectDir, "squad")
		require.NoError(t, err)
		assert.Equal(t, "custom", def.Prompt)
	})

	t.Run("termination and selector settings", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "squad", `
mode = "selector"
members = ["a", "b"]

[termination]
max_turns = 4
surrender = "never"

[selector]
model = "claude-haiku-4-5"
allow_repeated_speaker = true
prompt_file = "selector.md"
mystery = 12
`)
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "teams", "selector.md"), []byte("choose wisely"), 0o644))

		def, err := Load(projectDir, "squad")
		require.NoError(t, err)
		require.NotNil(t, def.MaxTurns)
		assert.Equal(t, 4, *def.MaxTurns)
		assert.Equal(t, "claude-haiku-4-5", def.SelectorModel)
		assert.True(t, def.AllowRepeatedSpeaker)
		assert.Equal(t, "choose wisely", def.SelectorPrompt)
	})

	t.Run("negative max_turns is ignored", func(t *testing.T) {
		projectDir := t.TempDir()
		writeTeam(t, projectDir, "squad", `
[termination]
max_turns = -1
`)
		def, err := Load(projectDir, "squad")
		require.NoError(t, err)
		assert.Nil(t, def.MaxTurns)
	})
}
