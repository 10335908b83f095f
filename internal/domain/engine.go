package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"deobf.dev/pkg/deobf/internal/adapter"
	m "deobf.dev/pkg/deobf/internal/model"
)

// State is the lifecycle position of an Engine run.
type State int

// Engine states. A run moves Idle -> Scanning -> (Rewriting) -> Done, or ends
// in Failed with the first error.
const (
	StateIdle State = iota
	StateScanning
	StateRewriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateRewriting:
		return "rewriting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine runs the two-phase deobfuscation over one tree at a time.
type Engine struct {
	fsAdapter adapter.SourceFSAdapter
	opts      Options
	sink      ChangeSink

	mu    sync.Mutex
	state State
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithChangeSink registers a receiver for per-file change records.
func WithChangeSink(sink ChangeSink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

// NewEngine constructs an Engine over fsAdapter.
func NewEngine(fsAdapter adapter.SourceFSAdapter, opts Options, options ...EngineOption) *Engine {
	e := &Engine{fsAdapter: fsAdapter, opts: opts}
	for _, option := range options {
		option(e)
	}

	return e
}

// State returns the state of the current or last run.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run deobfuscates root in place. Every run uses a fresh NameAllocator, so
// repeated runs in one process never share counters.
func (e *Engine) Run(ctx context.Context, root m.Path) (m.Result, error) {
	result := m.Result{Root: root, DryRun: e.opts.DryRun}

	slog.Info("Starting deobfuscation", "root", root, "dryRun", e.opts.DryRun)

	tables, scanned, err := e.scan(ctx, root)
	if err != nil {
		return result, err
	}

	result.Tables = tables
	result.FilesScanned = scanned
	result.Classes = tables.Classes.Len()
	result.Fields = tables.Fields.Len()
	result.Methods = tables.Methods.Len()

	if tables.Empty() {
		slog.Info("No obfuscated names detected", "root", root)
		e.setState(StateDone)

		return result, nil
	}

	slog.Info("Deobfuscation map", "root", root,
		"classes", result.Classes, "fields", result.Fields, "methods", result.Methods)

	e.setState(StateRewriting)

	modified, err := NewRewriter(e.fsAdapter, e.opts, e.sink).Rewrite(ctx, root, tables)
	result.FilesModified = modified

	if err != nil {
		e.setState(StateFailed)
		return result, fmt.Errorf("deobfuscate %s: %w", root, err)
	}

	e.setState(StateDone)
	slog.Info("Deobfuscation completed", "root", root, "summary", result.String())

	return result, nil
}

// Plan runs only the scan phase and returns the tables a Run would apply.
func (e *Engine) Plan(ctx context.Context, root m.Path) (*m.Tables, error) {
	tables, _, err := e.scan(ctx, root)
	if err != nil {
		return nil, err
	}

	e.setState(StateDone)

	return tables, nil
}

func (e *Engine) scan(ctx context.Context, root m.Path) (*m.Tables, int, error) {
	e.setState(StateScanning)

	tables, scanned, err := NewScanner(e.fsAdapter, e.opts).Scan(ctx, root, NewNameAllocator())
	if err != nil {
		e.setState(StateFailed)
		slog.Error("Scan failed", "root", root, "error", err)

		return nil, 0, fmt.Errorf("deobfuscate %s: %w", root, err)
	}

	return tables, scanned, nil
}
