// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package log provides the process-wide logger.
//
// A TUI owns the terminal, so the default sink is a file under the user's
// data directory rather than stderr. Level and destination come from the
// environment (BOBBIN_LOG_LEVEL, BOBBIN_LOG_FILE).
package log

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Setup initializes the global logger from the environment.
// It is called once from main; failures fall back to a no-op logger so
// logging problems never take the process down.
func Setup(dataDir string) {
	v := viper.New()
	v.SetEnvPrefix("BOBBIN")
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", filepath.Join(dataDir, "bobbin.log"))

	level, err := zapcore.ParseLevel(v.GetString("log_level"))
	if err != nil {
		level = zapcore.InfoLevel
	}

	path := v.GetString("log_file")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	l, err := cfg.Build()
	if err != nil {
		return
	}
	logger = l
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	return logger
}

// SetLogger sets the global logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}
