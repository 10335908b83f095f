package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deobf.dev/pkg/deobf/internal/domain"
)

var runParallelFlag int
var runDryRunFlag bool
var runDiffFlag bool
var runBackupFlag bool
var runNoMemberRefsFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dirs...]",
		Short: "Deobfuscate listing trees in place",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := engineOptions()
			if err != nil {
				return err
			}

			opts.DryRun = viper.GetBool(dryRunConfigKey)
			opts.Diff = runDiffFlag
			opts.MemberRefs = opts.MemberRefs && !runNoMemberRefsFlag

			mapping, format, err := mappingTarget()
			if err != nil {
				return err
			}

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Roots:         parsePaths(args),
				Threads:       viper.GetInt(runParallelConfigKey),
				Options:       opts,
				Mapping:       mapping,
				MappingFormat: format,
				Backup:        runBackupFlag,
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of trees processed in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().BoolVarP(&runDryRunFlag, dryRunFlagName, "n", viper.GetBool(dryRunConfigKey), "compute the rewrite without modifying files")
	bindFlagToConfig(cmd.Flags().Lookup(dryRunFlagName), dryRunConfigKey)

	cmd.Flags().BoolVarP(&runDiffFlag, diffFlagName, "d", false, "print a unified diff of every changed file")
	cmd.Flags().BoolVar(&runBackupFlag, backupFlagName, false, "copy each tree to <dir>"+domain.BackupSuffix+" before rewriting")
	cmd.Flags().BoolVar(&runNoMemberRefsFlag, noMemberRefsFlagName, false, "leave Lowner;->member references untouched")
}
