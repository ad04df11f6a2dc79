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
)

// ErrAlreadyInitialized is returned when the project directory exists.
var ErrAlreadyInitialized = errors.New("project configuration directory already exists")

var scaffoldFiles = map[string]string{
	"config.toml": `# bobbin project configuration
# model = "claude-sonnet-4-6"

[mcp_servers]
`,
	"agents/dev/config.toml": `name = "dev"
role = "developer"
`,
	"agents/dev/AGENTS.md": `You are the project's development agent. Make focused, minimal changes
and explain what you did.
`,
	"teams/dev-team.toml": `name = "dev-team"
mode = "selector"
members = ["dev"]

[selector]
model = "claude-haiku-4-5"
`,
	"teams/TEAM.md": `Work as a team. Keep each turn short and hand off cleanly.
`,
	"workflows/sample.toml": `name = "sample"
description = "Plan with the team, then implement."
steps = ["plan", "implement"]

[step.plan]
type = "team"
id = "dev-team"
prompt = "Outline a plan for the requested change."

[step.implement]
type = "agent"
id = "dev"
`,
}

// InitProject writes a starter configuration tree under dir/.bobbin: a
// minimal agent, a selector-mode team, and a sample workflow. It refuses to
// touch an existing configuration directory.
func InitProject(dir string) (string, error) {
	root := filepath.Join(dir, ProjectDirName)
	if _, err := os.Stat(root); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAlreadyInitialized, root)
	} else if !os.IsNotExist(err) {
		return "", err
	}
	for rel, content := range scaffoldFiles {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	return root, nil
}
