package cmd

import (
	"github.com/spf13/cobra"

	"deobf.dev/pkg/deobf/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dirs...]",
		Short: "Show the rename tables without modifying files",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := engineOptions()
			if err != nil {
				return err
			}

			mapping, format, err := mappingTarget()
			if err != nil {
				return err
			}

			return workflow.List(cmd.Context(), domain.ListArgs{
				Roots:         parsePaths(args),
				Options:       opts,
				Mapping:       mapping,
				MappingFormat: format,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
