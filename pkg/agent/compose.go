// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agent

import (
	"github.com/teradata-labs/bobbin/pkg/config"
)

// ComposeConfig produces the session config for this agent: a clone of base
// with the agent's overrides applied.
//
// Instruction priority: an explicit stepPrompt wins outright; otherwise the
// team and agent prompts are joined with a blank line, or whichever one is
// present is used alone. An agent provider id that the base config does not
// know is ignored rather than failing the session.
func (d *Definition) ComposeConfig(base *config.Config, teamPrompt, stepPrompt string) *config.Config {
	cfg := base.Clone()
	if d.Model != "" {
		cfg.Model = d.Model
	}
	if d.ModelProvider != "" {
		if provider, ok := cfg.ModelProviders[d.ModelProvider]; ok {
			cfg.ModelProviderID = d.ModelProvider
			cfg.ModelProvider = provider
		}
	}
	if d.IncludePlanTool != nil {
		cfg.IncludePlanTool = *d.IncludePlanTool
	}
	if d.IncludeApplyPatchTool != nil {
		cfg.IncludeApplyPatchTool = *d.IncludeApplyPatchTool
	}
	cfg.BaseInstructions = MergePrompts(teamPrompt, d.Prompt, stepPrompt)
	cfg.MCPServers = config.CloneMCPServers(d.MCPServers)
	return cfg
}

// MergePrompts applies the instruction priority table: step prompt first,
// then team and agent prompts joined with a blank line, then either alone.
func MergePrompts(teamPrompt, agentPrompt, stepPrompt string) string {
	switch {
	case stepPrompt != "":
		return stepPrompt
	case teamPrompt != "" && agentPrompt != "":
		return teamPrompt + "\n\n" + agentPrompt
	case teamPrompt != "":
		return teamPrompt
	default:
		return agentPrompt
	}
}
