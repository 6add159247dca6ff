package widgets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete a widget",
		Example: `  # Delete a widget
  wkioskctl widgets delete 65f1c0a2e4b0a1b2c3d4e5f6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}

			if err := client.DeleteWidget(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting widget: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Widget %q deleted\n", args[0])
			return nil
		},
	}
}
