// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/teradata-labs/bobbin/pkg/agent"
	"github.com/teradata-labs/bobbin/pkg/config"
	"github.com/teradata-labs/bobbin/pkg/conversation"
	"github.com/teradata-labs/bobbin/pkg/session"
	"github.com/teradata-labs/bobbin/pkg/team"
)

// Options mirror the workflow CLI surface.
type Options struct {
	// Cwd overrides the working directory used for project discovery.
	Cwd string
	// JSON switches stdout to one-object-per-result output.
	JSON bool
	// OutputLastMessage, when set, receives the final step's last message.
	OutputLastMessage string
	// FullAuto runs with a writable workspace sandbox.
	FullAuto bool
	// DangerouslyBypass disables sandboxing entirely.
	DangerouslyBypass bool
	// Profile selects a named profile from the project config.
	Profile string
	// Overrides are raw -c KEY=VALUE pairs, applied last.
	Overrides []string

	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes workflows sequentially, one session per step. Teams are
// not expanded in headless runs: a team step collapses to its first member
// so results stay deterministic.
type Runner struct {
	mgr    conversation.Manager
	logger *zap.Logger
}

// NewRunner creates a headless workflow runner.
func NewRunner(mgr conversation.Manager, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{mgr: mgr, logger: logger}
}

// Run executes the named workflow. The first fatal error (discovery, load,
// or session failure) aborts the run and is returned to the caller.
func (r *Runner) Run(ctx context.Context, name string, opts Options) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	projectDir, err := config.FindProjectDir(opts.Cwd)
	if err != nil {
		return err
	}
	if projectDir == "" {
		return ErrNoProject
	}

	wf, err := LoadWorkflow(projectDir, name)
	if err != nil {
		return err
	}
	if len(wf.Steps) == 0 {
		fmt.Fprintf(stdout, "Workflow '%s' has no steps\n", wf.Name)
		return nil
	}

	pf, err := config.LoadProjectFile(projectDir)
	if err != nil {
		return err
	}
	base, err := r.baseConfig(pf, projectDir, opts)
	if err != nil {
		return err
	}

	r.logger.Info("workflow started",
		zap.String("workflow", wf.Name),
		zap.Int("steps", len(wf.Steps)))

	var lastMessage string
	for i, step := range wf.Steps {
		cfg, prompt, err := r.composeStep(projectDir, pf, base, step)
		if err != nil {
			return fmt.Errorf("step %q: %w", step.Key, err)
		}

		r.logger.Info("step started",
			zap.String("workflow", wf.Name),
			zap.Int("step", i+1),
			zap.String("key", step.Key),
			zap.String("id", step.ID))

		pumpOpts := session.Options{Logger: r.logger}
		if !opts.JSON {
			pumpOpts.Summary = stderr
		}
		lastMessage, err = session.Run(ctx, r.mgr, cfg, prompt, pumpOpts)
		if err != nil {
			return fmt.Errorf("step %q: %w", step.Key, err)
		}
	}

	return r.emit(stdout, lastMessage, opts)
}

// baseConfig builds the workflow-wide config: headless runs never prompt
// for approval, and the sandbox follows the CLI flags.
func (r *Runner) baseConfig(pf *config.ProjectFile, projectDir string, opts Options) (*config.Config, error) {
	cfg := pf.BaseConfig()
	cfg.ApprovalPolicy = config.ApprovalNever
	switch {
	case opts.FullAuto:
		cfg.SandboxMode = config.SandboxWorkspaceWrite
	case opts.DangerouslyBypass:
		cfg.SandboxMode = config.SandboxDangerFullAccess
	}
	if opts.Cwd != "" {
		cfg.Cwd = opts.Cwd
	}
	if err := pf.ApplyProfile(cfg, opts.Profile); err != nil {
		return nil, err
	}
	for _, raw := range opts.Overrides {
		if err := cfg.ApplyOverride(raw); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// composeStep resolves a step to a session config and its first prompt.
func (r *Runner) composeStep(projectDir string, pf *config.ProjectFile, base *config.Config, step Step) (*config.Config, string, error) {
	switch step.Kind {
	case StepAgent:
		def, err := agent.Load(projectDir, step.ID, pf.MCPServers)
		if err != nil {
			return nil, "", err
		}
		cfg := def.ComposeConfig(base, "", step.Prompt)
		return cfg, cfg.BaseInstructions, nil

	case StepTeam:
		teamDef, err := team.Load(projectDir, step.ID)
		if err != nil {
			return nil, "", err
		}
		if len(teamDef.Members) == 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrNoMembers, teamDef.Name)
		}
		def, err := agent.Load(projectDir, teamDef.Members[0], pf.MCPServers)
		if err != nil {
			return nil, "", err
		}
		cfg := def.ComposeConfig(base, teamDef.Prompt, step.Prompt)
		return cfg, cfg.BaseInstructions, nil

	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedStepType, step.Kind)
	}
}

// emit writes the final output: an optional file, then one JSON object or
// the plain last message.
func (r *Runner) emit(stdout io.Writer, lastMessage string, opts Options) error {
	if opts.OutputLastMessage != "" {
		if err := os.WriteFile(opts.OutputLastMessage, []byte(lastMessage), 0o644); err != nil {
			return fmt.Errorf("write last message: %w", err)
		}
	}
	if opts.JSON {
		if lastMessage != "" {
			out, err := json.Marshal(map[string]string{"type": "last_message", "text": lastMessage})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(out))
		}
		return nil
	}
	if lastMessage != "" {
		fmt.Fprintln(stdout, lastMessage)
	}
	return nil
}
