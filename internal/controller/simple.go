package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "deobf.dev/pkg/deobf/internal/model"
)

// SimpleUI implements UI by printing to the cobra command's output.
type SimpleUI struct {
	cmd  *cobra.Command
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mode = newStartConfig(options...).mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRunInfo prints which trees are about to be processed.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, roots []m.Path, threads int, dryRun bool) {
	if ctx.Err() != nil {
		return
	}

	mode := "Deobfuscating"
	if s.mode == ModeList {
		mode = "Scanning"
	} else if dryRun {
		mode = "Dry run over"
	}

	s.printf("%s %d tree(s) with %d worker(s)\n", mode, len(roots), threads)
}

// DisplayPlan prints the rename tables of root.
func (s *SimpleUI) DisplayPlan(ctx context.Context, root m.Path, tables *m.Tables) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if tables.Empty() {
		s.printf("\n%s: no obfuscated names detected\n", root)
		return nil
	}

	s.printf("\n%s\n%s", root, renderMappingTable(tables))

	return nil
}

// DisplayResult prints the summary table and the changed files of one run.
func (s *SimpleUI) DisplayResult(ctx context.Context, result m.Result, changes ChangeSource) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderResultTable(result))

	listing, err := renderChanges(changes)
	if err != nil {
		return err
	}

	if listing != "" {
		s.printf("\n%s", listing)
	}

	s.printf("%s: %s\n", result.Root, result.String())

	return nil
}

// DisplayError prints a failure.
func (s *SimpleUI) DisplayError(_ context.Context, err error) {
	if err == nil {
		return
	}

	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "error: %v\n", err)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
