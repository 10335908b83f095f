package domain

import (
	"errors"
	"fmt"

	m "deobf.dev/pkg/deobf/internal/model"
)

// ErrDirectoryNotFound is returned when the tree root is missing or is not a
// directory. No table is touched in that case.
var ErrDirectoryNotFound = errors.New("directory not found")

// ErrOverlappingRoots is returned when one requested root contains another,
// which would rewrite the same file twice.
var ErrOverlappingRoots = errors.New("overlapping roots")

// ErrBackupInsideRoot is returned when a snapshot would be written inside a
// tree that is about to be rewritten.
var ErrBackupInsideRoot = errors.New("backup inside root")

// ErrNoRoots is returned when a workflow is started without any root.
var ErrNoRoots = errors.New("no roots given")

// Phase names the engine phase an error came from.
type Phase string

const (
	// PhaseScan is the table-building pass.
	PhaseScan Phase = "scan"
	// PhaseRewrite is the substitution pass.
	PhaseRewrite Phase = "rewrite"
)

// RunError wraps an I/O failure with the phase and file it happened in.
type RunError struct {
	Phase Phase
	Path  m.Path
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Path, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
