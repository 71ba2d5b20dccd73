package root

import (
	"github.com/flarebyte/coachgrade/cmd/coachgrade/check"
	"github.com/flarebyte/coachgrade/cmd/coachgrade/grade"
	"github.com/flarebyte/coachgrade/cmd/coachgrade/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for coachgrade.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coachgrade",
		Short: "CLI: Award points to students who opened the Engineering Coach",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(grade.NewCmd())
	cmd.AddCommand(check.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
