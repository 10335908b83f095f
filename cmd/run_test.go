package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deobf.dev/pkg/deobf/internal/adapter"
	"deobf.dev/pkg/deobf/internal/domain"
	domainmocks "deobf.dev/pkg/deobf/internal/domain/mocks"
	m "deobf.dev/pkg/deobf/internal/model"
)

func newTestRunCmd(t *testing.T) (*cobra.Command, *domainmocks.MockWorkflow) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newRunCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() { workflow = originalWorkflow })

	return cmd, mockWorkflow
}

func TestRunCmd_Defaults(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return len(args.Roots) == 1 &&
			args.Roots[0] == m.Path(".") &&
			args.Threads == 1 &&
			args.Options.Extension == ".smali" &&
			args.Options.MemberRefs &&
			!args.Options.DryRun &&
			!args.Options.Diff &&
			args.Mapping == "" &&
			!args.Backup
	})).Return(nil)

	cmd.SetArgs([]string{"run"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_ParallelAndMultipleRoots(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Threads == 2 &&
			len(args.Roots) == 3 &&
			args.Roots[0] == m.Path("a/smali") &&
			args.Roots[1] == m.Path("b/smali") &&
			args.Roots[2] == m.Path("c/smali")
	})).Return(nil)

	cmd.SetArgs([]string{"run", "--parallel", "2", "a/smali", "b/smali", "c/smali"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_DryRunWithDiff(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Options.DryRun && args.Options.Diff
	})).Return(nil)

	cmd.SetArgs([]string{"run", "-n", "-d", "out"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_BackupAndNoMemberRefs(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Backup && !args.Options.MemberRefs
	})).Return(nil)

	cmd.SetArgs([]string{"run", "--backup", "--no-member-refs", "out"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_WithExcludePatterns(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return len(args.Options.Exclude) == 2 &&
			args.Options.Exclude[0].String() == "^android/" &&
			args.Options.Exclude[1].String() == `R\$.*\.smali$`
	})).Return(nil)

	cmd.SetArgs([]string{"run", "-x", "^android/", "-x", `R\$.*\.smali$`, "out"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_InvalidExcludePattern(t *testing.T) {
	cmd, _ := newTestRunCmd(t)

	cmd.SetArgs([]string{"run", "-x", "(", "out"})
	require.Error(t, cmd.Execute())
}

func TestRunCmd_Mapping(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Mapping == m.Path("map.json") && args.MappingFormat == adapter.MappingJSON
	})).Return(nil)

	cmd.SetArgs([]string{"run", "-m", "map.json", "out"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_MappingFormatOverride(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Mapping == m.Path("map.out") && args.MappingFormat == adapter.MappingJSON
	})).Return(nil)

	cmd.SetArgs([]string{"run", "-m", "map.out", "--mapping-format", "json", "out"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_CustomExtension(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Options.Extension == ".jasmin"
	})).Return(nil)

	cmd.SetArgs([]string{"run", "--ext", ".jasmin", "out"})
	require.NoError(t, cmd.Execute())
}

func TestRunCmd_PropagatesWorkflowError(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Run", mock.Anything, mock.Anything).Return(domain.ErrDirectoryNotFound)

	cmd.SetArgs([]string{"run", "missing"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run [dirs...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, runLongDescription, cmd.Long)

	for _, name := range []string{runParallelFlagName, dryRunFlagName, diffFlagName, backupFlagName, noMemberRefsFlagName} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
