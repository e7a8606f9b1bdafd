package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dirdump/pkg/version"
)

// newVersionCommand displays the build information. The --short flag
// prints the version number only.
func newVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of dirdump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}

			v := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), v.Version)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			return nil
		},
	}
	versionCmd.Flags().BoolP("short", "s", false, "Print the version number only")
	return versionCmd
}
