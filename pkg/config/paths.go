// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectDirName is the directory that marks a project root.
const ProjectDirName = ".bobbin"

// FindProjectDir locates the project configuration directory for cwd.
//
// It resolves a preliminary working directory (cwd, or the process working
// directory when cwd is empty) and walks upward, checking each directory and
// its ancestors for a child named after ProjectDirName. The first match is
// returned as an absolute path to the configuration directory itself.
// Returns "" when no ancestor carries one; errors only on filesystem
// failures.
func FindProjectDir(cwd string) (string, error) {
	dir := cwd
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, ProjectDirName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return candidate, nil
		case err != nil && !os.IsNotExist(err):
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// GetDataDir returns the bobbin data directory.
//
// Priority:
// 1. BOBBIN_HOME environment variable (if set and non-empty)
// 2. ~/.bobbin (default)
//
// A leading "~/" in BOBBIN_HOME is expanded against the user's home
// directory and other values are made absolute. When the home directory
// cannot be determined, a "~/" value is returned as given and the default
// falls back to the relative ProjectDirName.
func GetDataDir() string {
	if dataDir := os.Getenv("BOBBIN_HOME"); dataDir != "" {
		return expandPath(dataDir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ProjectDirName
	}
	return filepath.Join(homeDir, ProjectDirName)
}

// expandPath expands ~ and resolves to an absolute path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
