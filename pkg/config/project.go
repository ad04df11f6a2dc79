// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Custom errors for project config loading.
var (
	ErrInvalidConfig  = errors.New("invalid project configuration")
	ErrUnknownProfile = errors.New("unknown config profile")
	ErrUnknownKey     = errors.New("unknown config override key")
)

// ProjectFile is the root config.toml of a project configuration directory.
// Unknown keys are ignored; the orchestration core only reads the fields
// below.
type ProjectFile struct {
	Model          string                   `toml:"model"`
	ModelProvider  string                   `toml:"model_provider"`
	ApprovalPolicy string                   `toml:"approval_policy"`
	SandboxMode    string                   `toml:"sandbox_mode"`
	MCPServers     map[string]MCPServer     `toml:"mcp_servers"`
	ModelProviders map[string]ModelProvider `toml:"model_providers"`
	Profiles       map[string]Profile       `toml:"profiles"`
}

// Profile is a named set of overrides selectable with --profile.
type Profile struct {
	Model          string `toml:"model"`
	ModelProvider  string `toml:"model_provider"`
	ApprovalPolicy string `toml:"approval_policy"`
	SandboxMode    string `toml:"sandbox_mode"`
}

// LoadProjectFile reads <projectDir>/config.toml. A missing file yields an
// empty ProjectFile; a parse failure is fatal.
func LoadProjectFile(projectDir string) (*ProjectFile, error) {
	path := filepath.Join(projectDir, "config.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProjectFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project config: %w", err)
	}
	var pf ProjectFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return &pf, nil
}

// builtinProviders are always available; config.toml entries with the same
// id replace them.
func builtinProviders() map[string]ModelProvider {
	return map[string]ModelProvider{
		"anthropic": {Name: "Anthropic", BaseURL: "https://api.anthropic.com", EnvKey: "ANTHROPIC_API_KEY", WireAPI: "messages"},
		"bedrock":   {Name: "AWS Bedrock", WireAPI: "bedrock"},
	}
}

// BaseConfig materializes a session config from the project file, before any
// agent overrides are composed on top.
func (pf *ProjectFile) BaseConfig() *Config {
	cfg := &Config{
		Model:           "claude-sonnet-4-6",
		ModelProviderID: "anthropic",
		ModelProviders:  builtinProviders(),
		ApprovalPolicy:  ApprovalOnRequest,
		SandboxMode:     SandboxReadOnly,
		MCPServers:      CloneMCPServers(pf.MCPServers),
	}
	for id, p := range pf.ModelProviders {
		cfg.ModelProviders[id] = p
	}
	if pf.Model != "" {
		cfg.Model = pf.Model
	}
	if pf.ModelProvider != "" {
		if _, ok := cfg.ModelProviders[pf.ModelProvider]; ok {
			cfg.ModelProviderID = pf.ModelProvider
		}
	}
	if pf.ApprovalPolicy != "" {
		cfg.ApprovalPolicy = ApprovalPolicy(pf.ApprovalPolicy)
	}
	if pf.SandboxMode != "" {
		cfg.SandboxMode = SandboxMode(pf.SandboxMode)
	}
	cfg.ModelProvider = cfg.ModelProviders[cfg.ModelProviderID]
	return cfg
}

// ApplyProfile layers a named profile from the project file onto cfg.
func (pf *ProjectFile) ApplyProfile(cfg *Config, name string) error {
	if name == "" {
		return nil
	}
	p, ok := pf.Profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.ModelProvider != "" {
		if provider, ok := cfg.ModelProviders[p.ModelProvider]; ok {
			cfg.ModelProviderID = p.ModelProvider
			cfg.ModelProvider = provider
		}
	}
	if p.ApprovalPolicy != "" {
		cfg.ApprovalPolicy = ApprovalPolicy(p.ApprovalPolicy)
	}
	if p.SandboxMode != "" {
		cfg.SandboxMode = SandboxMode(p.SandboxMode)
	}
	return nil
}

// ApplyOverride applies one -c KEY=VALUE override to cfg.
func (c *Config) ApplyOverride(raw string) error {
	key, value, found := strings.Cut(raw, "=")
	if !found {
		return fmt.Errorf("%w: %q is not KEY=VALUE", ErrUnknownKey, raw)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	switch key {
	case "model":
		c.Model = value
	case "model_provider":
		if provider, ok := c.ModelProviders[value]; ok {
			c.ModelProviderID = value
			c.ModelProvider = provider
		}
	case "approval_policy":
		c.ApprovalPolicy = ApprovalPolicy(value)
	case "sandbox_mode":
		c.SandboxMode = SandboxMode(value)
	case "base_instructions":
		c.BaseInstructions = value
	case "include_plan_tool", "include_apply_patch_tool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s wants a boolean, got %q", ErrUnknownKey, key, value)
		}
		if key == "include_plan_tool" {
			c.IncludePlanTool = b
		} else {
			c.IncludeApplyPatchTool = b
		}
	case "cwd":
		c.Cwd = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
