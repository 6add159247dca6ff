package widgets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a widget between active and inactive",
		Example: `  # Take a widget out of rotation, or put it back
  wkioskctl widgets toggle 65f1c0a2e4b0a1b2c3d4e5f6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}

			w, err := client.ToggleWidget(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error toggling widget: %w", err)
			}

			state := "inactive"
			if w.IsActive {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Widget %q is now %s\n", w.Title, state)
			return nil
		},
	}
}
