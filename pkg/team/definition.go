// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package team loads team definitions: ordered agent collections with a
// routing mode and optional termination and selector settings.
package team

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Custom errors for team definition loading.
var (
	ErrInvalidConfig = errors.New("invalid team configuration")
	ErrUnknownMode   = errors.New("unknown team mode")
)

// Routing modes. Every non-selector mode routes round-robin today; the
// distinct names exist so configs can declare intent ahead of richer
// semantics.
const (
	ModeRoute      = "route"
	ModeCoordinate = "coordinate"
	ModeCollab     = "collaborate"
	ModeRoundRobin = "round_robin"
	ModeSelector   = "selector"
)

// DefaultPromptFile is the prompt read when a team sets no prompt_file.
const DefaultPromptFile = "TEAM.md"

// Definition is one team. The termination and selector tables are free-form
// in the file; their recognized keys are extracted into the derived fields
// below and unknown keys are ignored.
type Definition struct {
	Name        string         `toml:"name"`
	Mode        string         `toml:"mode"`
	PromptFile  string         `toml:"prompt_file"`
	Members     []string       `toml:"members"`
	Termination map[string]any `toml:"termination"`
	Selector    map[string]any `toml:"selector"`

	Prompt               string `toml:"-"`
	MaxTurns             *int   `toml:"-"`
	SelectorModel        string `toml:"-"`
	SelectorPrompt       string `toml:"-"`
	AllowRepeatedSpeaker bool   `toml:"-"`
}

// List enumerates team names: the stems of *.toml files under
// <projectDir>/teams, sorted. A missing teams directory yields an empty
// list.
func List(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(projectDir, "teams"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads <projectDir>/teams/<name>.toml and resolves the team prompt
// and the recognized termination/selector keys.
func Load(projectDir, name string) (*Definition, error) {
	path := filepath.Join(projectDir, "teams", name+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read team config: %w", err)
	}
	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if def.Name == "" {
		def.Name = name
	}
	if def.Mode == "" {
		def.Mode = ModeRoundRobin
	}
	if !validMode(def.Mode) {
		return nil, fmt.Errorf("%w: %s: %q", ErrUnknownMode, path, def.Mode)
	}

	parent := filepath.Dir(path)
	if parent == path {
		return nil, fmt.Errorf("%w: %s: no parent directory", ErrInvalidConfig, path)
	}
	def.Prompt, err = readPrompt(parent, def.PromptFile)
	if err != nil {
		return nil, err
	}

	if turns, ok := intKey(def.Termination, "max_turns"); ok && turns >= 0 {
		def.MaxTurns = &turns
	}
	if model, ok := stringKey(def.Selector, "model"); ok {
		def.SelectorModel = model
	}
	if allow, ok := boolKey(def.Selector, "allow_repeated_speaker"); ok {
		def.AllowRepeatedSpeaker = allow
	}
	if promptFile, ok := stringKey(def.Selector, "prompt_file"); ok && promptFile != "" {
		def.SelectorPrompt, err = readPrompt(parent, promptFile)
		if err != nil {
			return nil, err
		}
	}
	return &def, nil
}

func validMode(mode string) bool {
	switch strings.ToLower(mode) {
	case ModeRoute, ModeCoordinate, ModeCollab, ModeRoundRobin, ModeSelector:
		return true
	}
	return false
}

// readPrompt reads a prompt file resolved against the team file's
// directory. Missing or empty-after-trim means no prompt.
func readPrompt(parent, promptFile string) (string, error) {
	path := promptFile
	if path == "" {
		path = DefaultPromptFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(parent, path)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read team prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func intKey(table map[string]any, key string) (int, bool) {
	switch v := table[key].(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func stringKey(table map[string]any, key string) (string, bool) {
	s, ok := table[key].(string)
	return s, ok
}

func boolKey(table map[string]any, key string) (bool, bool) {
	b, ok := table[key].(bool)
	return b, ok
}
