package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"deobf.dev/pkg/deobf/internal/adapter"
	"deobf.dev/pkg/deobf/internal/controller"
	m "deobf.dev/pkg/deobf/internal/model"
	"deobf.dev/pkg/deobf/pkg"
)

// BackupSuffix is appended to a root to name its pre-run snapshot.
const BackupSuffix = ".bak"

// RunArgs contains the arguments of a deobfuscation run.
type RunArgs struct {
	Roots         []m.Path
	Threads       int
	Options       Options
	Mapping       m.Path
	MappingFormat adapter.MappingFormat
	Backup        bool
}

// ListArgs contains the arguments of a scan-only listing.
type ListArgs struct {
	Roots         []m.Path
	Options       Options
	Mapping       m.Path
	MappingFormat adapter.MappingFormat
}

// ViewArgs contains the arguments for displaying a saved mapping.
type ViewArgs struct {
	Mapping m.Path
}

// Workflow drives engines over one or more trees and reports through the UI.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.MappingStore
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	mappingStore adapter.MappingStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		MappingStore:    mappingStore,
		UI:              ui,
	}
}

type rootOutcome struct {
	result  m.Result
	changes pkg.FileSpill[m.FileChange]
	ok      bool
}

// Run deobfuscates every root. Roots are independent: a failure in one tree
// does not cancel the others, and all failures are returned joined.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	roots, err := checkRoots(args.Roots)
	if err != nil {
		return err
	}

	threads := max(args.Threads, 1)
	runID := uuid.NewString()

	slog.Info("Run started", "run", runID, "roots", len(roots), "threads", threads, "dry_run", args.Options.DryRun)

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	w.DisplayRunInfo(ctx, roots, threads, args.Options.DryRun)

	outcomes := make([]rootOutcome, len(roots))
	errs := make([]error, len(roots))

	defer func() {
		for _, outcome := range outcomes {
			if outcome.changes == nil {
				continue
			}

			if err := outcome.changes.Close(); err != nil {
				slog.Warn("Failed to remove change spill", "error", err)
			}
		}
	}()

	var group errgroup.Group
	group.SetLimit(threads)

	for i, root := range roots {
		group.Go(func() error {
			outcomes[i], errs[i] = w.runRoot(ctx, root, args)
			return nil
		})
	}

	_ = group.Wait()

	for _, outcome := range outcomes {
		if !outcome.ok {
			continue
		}

		if err := w.DisplayResult(ctx, outcome.result, outcome.changes); err != nil {
			slog.Error("Failed to display result", "root", outcome.result.Root, "error", err)
			return fmt.Errorf("display: %w", err)
		}
	}

	runErr := errors.Join(errs...)
	if runErr != nil {
		w.DisplayError(ctx, runErr)
	}

	if args.Mapping != "" {
		tables := make([]m.RootMapping, 0, len(outcomes))
		for _, outcome := range outcomes {
			if outcome.ok {
				tables = append(tables, m.NewRootMapping(outcome.result.Root, outcome.result.Tables))
			}
		}

		if err := w.saveMapping(ctx, runID, args.Mapping, args.MappingFormat, tables); err != nil {
			w.DisplayError(ctx, err)
			runErr = errors.Join(runErr, err)
		}
	}

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)

	return runErr
}

func (w *workflow) runRoot(ctx context.Context, root m.Path, args RunArgs) (rootOutcome, error) {
	if err := validateRoot(ctx, w.SourceFSAdapter, root); err != nil {
		return rootOutcome{}, fmt.Errorf("deobfuscate %s: %w", root, err)
	}

	if args.Backup && !args.Options.DryRun {
		backup, err := backupPath(root, args.Roots)
		if err != nil {
			return rootOutcome{}, fmt.Errorf("backup %s: %w", root, err)
		}

		if err := w.CopyDir(ctx, root, backup); err != nil {
			return rootOutcome{}, fmt.Errorf("backup %s: %w", root, err)
		}

		slog.Info("Backup created", "root", root, "backup", backup)
	}

	changes, err := pkg.NewFileSpill[m.FileChange]("")
	if err != nil {
		return rootOutcome{}, fmt.Errorf("deobfuscate %s: %w", root, err)
	}

	engine := NewEngine(w.SourceFSAdapter, args.Options, WithChangeSink(changes.Append))

	result, err := engine.Run(ctx, root)
	if err != nil {
		return rootOutcome{changes: changes}, err
	}

	return rootOutcome{result: result, changes: changes, ok: true}, nil
}

// List scans every root and displays the rename tables without rewriting. A
// root that fails to scan does not hide the others; failures are joined.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	roots, err := checkRoots(args.Roots)
	if err != nil {
		return err
	}

	runID := uuid.NewString()

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	w.DisplayRunInfo(ctx, roots, 1, true)

	mappings := make([]m.RootMapping, 0, len(roots))

	var errs []error

	for _, root := range roots {
		tables, err := NewEngine(w.SourceFSAdapter, args.Options).Plan(ctx, root)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := w.DisplayPlan(ctx, root, tables); err != nil {
			slog.Error("Failed to display plan", "root", root, "error", err)
			return fmt.Errorf("display: %w", err)
		}

		mappings = append(mappings, m.NewRootMapping(root, tables))
	}

	listErr := errors.Join(errs...)
	if listErr != nil {
		w.DisplayError(ctx, listErr)
	}

	if args.Mapping != "" {
		if err := w.saveMapping(ctx, runID, args.Mapping, args.MappingFormat, mappings); err != nil {
			w.DisplayError(ctx, err)
			listErr = errors.Join(listErr, err)
		}
	}

	w.Wait(ctx)

	return listErr
}

// View displays the rename tables of a previously saved mapping file.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	doc, err := w.LoadMapping(ctx, args.Mapping)
	if err != nil {
		slog.Error("Failed to load mapping", "path", args.Mapping, "error", err)
		return fmt.Errorf("load mapping: %w", err)
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	for _, root := range doc.Roots {
		if err := w.DisplayPlan(ctx, root.Root, root.Tables()); err != nil {
			slog.Error("Failed to display mapping", "root", root.Root, "error", err)
			return fmt.Errorf("display: %w", err)
		}
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) saveMapping(
	ctx context.Context,
	runID string,
	path m.Path,
	format adapter.MappingFormat,
	roots []m.RootMapping,
) error {
	if format == "" {
		format = adapter.FormatForPath(path)
	}

	doc := m.MappingDocument{Version: adapter.CurrentMappingVersion, RunID: runID, Roots: roots}
	if err := w.SaveMapping(ctx, path, format, doc); err != nil {
		slog.Error("Failed to save mapping", "path", path, "error", err)
		return fmt.Errorf("save mapping: %w", err)
	}

	slog.Info("Mapping saved", "run", runID, "path", path, "roots", len(roots))

	return nil
}

// backupPath names the snapshot of root as a sibling of its cleaned absolute
// path. A snapshot inside any root of the run would be rewritten with it, so
// that is refused.
func backupPath(root m.Path, roots []m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(root))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}

	backup := abs + BackupSuffix

	for _, other := range roots {
		otherAbs, err := filepath.Abs(string(other))
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", other, err)
		}

		if nested(otherAbs, backup) {
			return "", fmt.Errorf("%w: %s is inside %s", ErrBackupInsideRoot, backup, other)
		}
	}

	return m.Path(backup), nil
}

// checkRoots rejects an empty root list and roots that contain one another.
func checkRoots(roots []m.Path) ([]m.Path, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}

	abs := make([]string, len(roots))

	for i, root := range roots {
		path, err := filepath.Abs(string(root))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}

		abs[i] = path
	}

	for i := range abs {
		for j := i + 1; j < len(abs); j++ {
			if nested(abs[i], abs[j]) || nested(abs[j], abs[i]) {
				return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingRoots, roots[i], roots[j])
			}
		}
	}

	return roots, nil
}

func nested(parent, child string) bool {
	if parent == child {
		return true
	}

	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return strings.HasPrefix(child, prefix)
}
