// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package agent loads agent definitions from a project configuration tree
// and composes per-session configs from them.
package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/teradata-labs/bobbin/pkg/config"
)

// Custom errors for agent definition loading.
var (
	ErrInvalidConfig = errors.New("invalid agent configuration")
)

// DefaultPromptFile is the prompt read when an agent sets no prompt_file.
const DefaultPromptFile = "AGENTS.md"

// Definition is one agent: a named bundle of model, prompt, tool flags, and
// MCP servers. After Load, MCPServers holds the effective merged map and
// Prompt the trimmed prompt contents ("" when absent).
type Definition struct {
	Name                  string                      `toml:"name"`
	Role                  string                      `toml:"role"`
	Model                 string                      `toml:"model"`
	ModelProvider         string                      `toml:"model_provider"`
	Profile               string                      `toml:"profile"`
	PromptFile            string                      `toml:"prompt_file"`
	IncludePlanTool       *bool                       `toml:"include_plan_tool"`
	IncludeApplyPatchTool *bool                       `toml:"include_apply_patch_tool"`
	Tags                  []string                    `toml:"tags"`
	InheritMCPFromProject bool                        `toml:"inherit_mcp_from_project"`
	MCPServers            map[string]config.MCPServer `toml:"mcp_servers"`

	Prompt string `toml:"-"`
	Dir    string `toml:"-"`
}

// List enumerates agent names under <projectDir>/agents: immediate child
// directories that contain a config.toml, sorted by name. A missing agents
// directory yields an empty list.
func List(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(projectDir, "agents"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(projectDir, "agents", e.Name(), "config.toml")); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads <projectDir>/agents/<name>/config.toml, resolves the agent
// prompt, and builds the effective MCP server map. projectMCP supplies the
// project-level servers adopted when inherit_mcp_from_project is set; the
// agent's own entries win on every name collision.
func Load(projectDir, name string, projectMCP map[string]config.MCPServer) (*Definition, error) {
	dir := filepath.Join(projectDir, "agents", name)
	path := filepath.Join(dir, "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent config: %w", err)
	}
	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	def.Dir = dir
	if def.Name == "" {
		def.Name = name
	}

	prompt, err := readPrompt(dir, def.PromptFile)
	if err != nil {
		return nil, err
	}
	def.Prompt = prompt

	effective, err := mergeMCPServers(dir, def.MCPServers, def.InheritMCPFromProject, projectMCP)
	if err != nil {
		return nil, err
	}
	def.MCPServers = effective
	return &def, nil
}

// readPrompt resolves and reads the agent prompt file. Relative paths
// resolve against the agent directory; a missing or empty-after-trim file
// means no prompt.
func readPrompt(dir, promptFile string) (string, error) {
	path := promptFile
	if path == "" {
		path = DefaultPromptFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read agent prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// mergeMCPServers builds the effective MCP map: inline entries from
// config.toml, overridden by mcp.toml entries of the same name, plus
// project entries for names the agent does not define.
func mergeMCPServers(dir string, inline map[string]config.MCPServer, inherit bool, projectMCP map[string]config.MCPServer) (map[string]config.MCPServer, error) {
	effective := config.CloneMCPServers(inline)
	if effective == nil {
		effective = map[string]config.MCPServer{}
	}

	mcpPath := filepath.Join(dir, "mcp.toml")
	data, err := os.ReadFile(mcpPath)
	switch {
	case err == nil:
		var servers map[string]config.MCPServer
		if err := toml.Unmarshal(data, &servers); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, mcpPath, err)
		}
		for name, server := range servers {
			effective[name] = server
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", mcpPath, err)
	}

	if inherit {
		for name, server := range projectMCP {
			if _, ok := effective[name]; !ok {
				effective[name] = server
			}
		}
	}
	return effective, nil
}
