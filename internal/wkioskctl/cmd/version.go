package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// These variables are set during build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wkioskctl version %s\n", version)
			if verbose {
				fmt.Fprintf(out, "  commit: %s\n", commit)
				fmt.Fprintf(out, "  built:  %s\n", date)
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include build details")
	return cmd
}
