// Package widgets implements the widget commands of wkioskctl
package widgets

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the widgets command tree
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "widgets",
		Aliases: []string{"widget", "slides"},
		Short:   "Manage rotation widgets",
		Long: `Widget commands list, preview, toggle, reorder and delete the widgets
stored in the Content Service. Displays pick changes up on their next
widget refresh.`,
	}

	cmd.AddCommand(
		newListCommand(),
		newEligibleCommand(),
		newToggleCommand(),
		newDeleteCommand(),
		newReorderCommand(),
	)

	return cmd
}
