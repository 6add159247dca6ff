package widgets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/schedule"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

func newListCommand() *cobra.Command {
	var (
		output string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List widgets",
		Example: `  # List the active widgets in rotation order
  wkioskctl widgets list

  # Include inactive widgets (requires a token)
  wkioskctl widgets list --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidateOutput(output); err != nil {
				return err
			}

			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}

			var widgets []v1alpha1.Widget
			if all {
				widgets, err = client.ListAllWidgets(cmd.Context())
			} else {
				widgets, err = client.ListWidgets(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("error listing widgets: %w", err)
			}
			content.SortWidgets(widgets)

			if output == util.OutputJSON {
				return util.PrintJSON(cmd.OutOrStdout(), widgets)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "ID\tTITLE\tTYPE\tDWELL\tORDER\tACTIVE\tSCHEDULE\n")
			for i := range widgets {
				w := &widgets[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\t%s\n",
					w.ID,
					util.Truncate(w.Title, 32),
					w.Type,
					w.Dwell(),
					w.Order,
					w.IsActive,
					schedule.Describe(w.Schedule),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", util.OutputTable, "Output format (table, json)")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive widgets")
	return cmd
}
