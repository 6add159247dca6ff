// Package cmd implements the Wrale Kiosk CLI commands
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/internal/wkioskctl/cmd/announcements"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/cmd/widgets"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

// NewRootCommand builds the wkioskctl command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wkioskctl",
		Short: "Wrale Kiosk control tool",
		Long: `wkioskctl manages the widgets and announcements a Wrale Kiosk display
rotates through, and inspects running display clients through their local API.

Content commands talk to the Content Service (--server). The status and
stats commands talk to a display client (--display).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	util.AddConnectionFlags(root)

	root.AddCommand(
		widgets.NewCommand(),
		announcements.NewCommand(),
		newStatusCmd(),
		newStatsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the CLI and exits non-zero on failure.
// This is called by main.main().
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
