// Package controller provides output adapters for displaying deobfuscation results.
package controller

import (
	"context"

	m "deobf.dev/pkg/deobf/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeList
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRunMode sets the UI to rewrite mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithListMode sets the UI to scan-only mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// ChangeSource is a replayable sequence of per-file change records.
type ChangeSource interface {
	Len() uint64
	Range(fn func(index uint64, change m.FileChange) error) error
}

// UI defines how the workflow reports progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunInfo(ctx context.Context, roots []m.Path, threads int, dryRun bool)
	DisplayPlan(ctx context.Context, root m.Path, tables *m.Tables) error
	DisplayResult(ctx context.Context, result m.Result, changes ChangeSource) error
	DisplayError(ctx context.Context, err error)
}
