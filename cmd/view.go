package cmd

import (
	"github.com/spf13/cobra"

	"deobf.dev/pkg/deobf/internal/domain"
	m "deobf.dev/pkg/deobf/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <mapping>",
		Short: "View a previously saved rename map",
		Long:  "View a rename map written by run or list with --mapping (YAML or JSON).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Mapping: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
