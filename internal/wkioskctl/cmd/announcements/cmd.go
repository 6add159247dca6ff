// Package announcements implements the announcement commands of wkioskctl
package announcements

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/schedule"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

// NewCommand returns the announcements command tree
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"announcement", "ann"},
		Short:   "Manage ticker announcements",
		Long: `Announcement commands list, toggle and delete the messages that scroll
in the ticker of every display.`,
	}

	cmd.AddCommand(
		newListCommand(),
		newToggleCommand(),
		newDeleteCommand(),
	)

	return cmd
}

// Showing returns the announcements the ticker would carry at now,
// highest priority first
func Showing(items []v1alpha1.Announcement, now time.Time) []v1alpha1.Announcement {
	var out []v1alpha1.Announcement
	for i := range items {
		if schedule.AnnouncementEligible(&items[i], now) {
			out = append(out, items[i])
		}
	}
	slices.SortStableFunc(out, func(a, b v1alpha1.Announcement) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out
}

func newListCommand() *cobra.Command {
	var (
		output   string
		active   bool
		at       string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List announcements",
		Example: `  # List every announcement, newest first
  wkioskctl announcements list

  # Show only what the ticker carries right now
  wkioskctl announcements list --active

  # Preview the ticker for a future instant
  wkioskctl announcements list --active --at "2024-03-09 09:00" --timezone Africa/Casablanca`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidateOutput(output); err != nil {
				return err
			}
			now, err := util.ResolveNow(at, timezone)
			if err != nil {
				return err
			}

			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}
			items, err := client.ListAnnouncements(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing announcements: %w", err)
			}
			if active {
				items = Showing(items, now)
			}

			if output == util.OutputJSON {
				if items == nil {
					items = []v1alpha1.Announcement{}
				}
				return util.PrintJSON(cmd.OutOrStdout(), items)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "ID\tTYPE\tPRIORITY\tACTIVE\tWINDOW\tTITLE\n")
			for i := range items {
				a := &items[i]
				fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\t%s\n",
					a.ID,
					a.Type,
					a.Priority,
					a.IsActive,
					util.FormatWindow(a.StartDate, a.EndDate),
					util.Truncate(a.Title, 40),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", util.OutputTable, "Output format (table, json)")
	cmd.Flags().BoolVar(&active, "active", false, "Only announcements the ticker carries at --at")
	cmd.Flags().StringVar(&at, "at", "", "Instant to evaluate validity windows at (default now)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone of the display (default local)")
	return cmd
}

func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip an announcement between active and inactive",
		Example: `  # Pull an announcement from the ticker, or put it back
  wkioskctl announcements toggle 65f1c0a2e4b0a1b2c3d4e5f6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}

			a, err := client.ToggleAnnouncement(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error toggling announcement: %w", err)
			}

			state := "inactive"
			if a.IsActive {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Announcement %q is now %s\n", a.Title, state)
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"remove", "rm"},
		Short:   "Delete an announcement",
		Example: `  # Delete an announcement
  wkioskctl announcements delete 65f1c0a2e4b0a1b2c3d4e5f6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}

			if err := client.DeleteAnnouncement(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting announcement: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Announcement %q deleted\n", args[0])
			return nil
		},
	}
}
