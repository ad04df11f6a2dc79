// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package orchestration loads workflow definitions and runs them headless:
// one conversation session per step, in order.
package orchestration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Custom errors for workflow loading and execution.
var (
	ErrInvalidWorkflow     = errors.New("invalid workflow")
	ErrUndefinedStep       = errors.New("undefined step")
	ErrUnsupportedStepType = errors.New("unsupported step type")
	ErrNoProject           = errors.New("no project config directory discovered")
	ErrNoMembers           = errors.New("team has no members")
)

// StepKind says whether a step invokes a single agent or a team.
type StepKind string

const (
	StepAgent StepKind = "agent"
	StepTeam  StepKind = "team"
)

// Step is one materialized workflow step.
type Step struct {
	Key      string
	Kind     StepKind
	ID       string
	Prompt   string
	MaxTurns *int
}

// Definition is a loaded workflow: an ordered sequence of steps.
type Definition struct {
	Name        string
	Description string
	Steps       []Step
}

// workflowFile mirrors the on-disk layout: a steps order plus a step table.
type workflowFile struct {
	Name        string              `toml:"name"`
	Description string              `toml:"description"`
	Steps       []string            `toml:"steps"`
	StepTable   map[string]stepBody `toml:"step"`
}

type stepBody struct {
	Type     string `toml:"type"`
	ID       string `toml:"id"`
	Prompt   string `toml:"prompt"`
	MaxTurns *int   `toml:"max_turns"`
}

// ListWorkflows enumerates workflow names: the stems of *.toml files under
// <projectDir>/workflows, sorted. A missing directory yields an empty list.
func ListWorkflows(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(projectDir, "workflows"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
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

// LoadWorkflow reads <projectDir>/workflows/<name>.toml and validates its
// referential integrity: every key in steps must appear in the step table,
// and every step type must be "agent" or "team".
func LoadWorkflow(projectDir, name string) (*Definition, error) {
	path := filepath.Join(projectDir, "workflows", name+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	var file workflowFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorkflow, path, err)
	}
	if file.Name == "" {
		file.Name = name
	}

	def := &Definition{Name: file.Name, Description: file.Description}
	for _, key := range file.Steps {
		body, ok := file.StepTable[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUndefinedStep, key)
		}
		kind := StepKind(body.Type)
		if kind != StepAgent && kind != StepTeam {
			return nil, fmt.Errorf("%w: step %q has type %q", ErrUnsupportedStepType, key, body.Type)
		}
		def.Steps = append(def.Steps, Step{
			Key:      key,
			Kind:     kind,
			ID:       body.ID,
			Prompt:   body.Prompt,
			MaxTurns: body.MaxTurns,
		})
	}
	return def, nil
}
