package cmd

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

// newStatusCmd reports what a display client is showing
func newStatusCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a display's rotation status",
		Example: `  # Status of the display on this machine
  wkioskctl status

  # Status of a remote display
  wkioskctl status --display http://10.0.0.12:8081 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidateOutput(output); err != nil {
				return err
			}

			client, err := util.GetDisplayClientFromCommand(cmd)
			if err != nil {
				return err
			}
			status, err := client.DisplayStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("error reading display status: %w", err)
			}

			if output == util.OutputJSON {
				return util.PrintJSON(cmd.OutOrStdout(), status)
			}
			return printStatus(cmd.OutOrStdout(), status, time.Now())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", util.OutputTable, "Output format (table, json)")
	return cmd
}

func printStatus(w io.Writer, s *v1alpha1.DisplayStatus, now time.Time) error {
	tw := util.NewTabWriter(w)

	fmt.Fprintf(tw, "Display:\t%s\n", s.DisplayID)
	fmt.Fprintf(tw, "State:\t%s\n", s.State)
	fmt.Fprintf(tw, "Loaded:\t%t\n", s.Loaded)
	if s.State == v1alpha1.RotationShowing {
		fmt.Fprintf(tw, "Widget:\t%s (%s, %s)\n", s.CurrentTitle, s.CurrentWidgetID, s.CurrentWidgetType)
		fmt.Fprintf(tw, "Position:\t%d of %d\n", s.CurrentIndex+1, s.EligibleCount)
		fmt.Fprintf(tw, "Shown:\t%s\n", util.FormatSince(s.ShownAt, now))
		if s.NextAdvanceAt != nil {
			fmt.Fprintf(tw, "Next advance:\t%s\n", s.NextAdvanceAt.Format(time.RFC3339))
		}
	}
	fmt.Fprintf(tw, "Announcements:\t%d\n", s.AnnouncementCount)
	fmt.Fprintf(tw, "Last refresh:\t%s\n", util.FormatSince(s.LastRefresh, now))
	if s.LastFetchError != "" {
		fmt.Fprintf(tw, "Last error:\t%s\n", s.LastFetchError)
	}

	return tw.Flush()
}

// newStatsCmd reports proof-of-play counts for a widget
func newStatsCmd() *cobra.Command {
	var (
		output string
		window time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats WIDGET_ID",
		Short: "Show proof-of-play counts for a widget",
		Long: `Query a display client's play log for how often a widget was shown and
how often it rendered as an error. The display must run with a play log
backend configured.`,
		Example: `  # Plays in the last 24 hours
  wkioskctl stats 65f1c0a2e4b0a1b2c3d4e5f6

  # Plays in the last week
  wkioskctl stats 65f1c0a2e4b0a1b2c3d4e5f6 --window 168h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidateOutput(output); err != nil {
				return err
			}
			if window <= 0 {
				return fmt.Errorf("window must be positive")
			}

			client, err := util.GetDisplayClientFromCommand(cmd)
			if err != nil {
				return err
			}
			stats, err := client.WidgetStats(cmd.Context(), args[0], window)
			if err != nil {
				return fmt.Errorf("error reading widget stats: %w", err)
			}

			if output == util.OutputJSON {
				return util.PrintJSON(cmd.OutOrStdout(), stats)
			}
			return printStats(cmd.OutOrStdout(), stats, time.Now())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", util.OutputTable, "Output format (table, json)")
	cmd.Flags().DurationVar(&window, "window", 24*time.Hour, "How far back to count")
	return cmd
}

func printStats(w io.Writer, s *v1alpha1.WidgetStats, now time.Time) error {
	tw := util.NewTabWriter(w)

	fmt.Fprintf(tw, "Widget:\t%s\n", s.WidgetID)
	fmt.Fprintf(tw, "Since:\t%s\n", s.Since.Format(time.RFC3339))
	fmt.Fprintf(tw, "Plays:\t%d\n", s.PlayCount)
	fmt.Fprintf(tw, "Errors:\t%d\n", s.ErrorCount)
	fmt.Fprintf(tw, "Last shown:\t%s\n", util.FormatSince(s.LastShown, now))

	codes := make([]string, 0, len(s.ErrorCodes))
	for code := range s.ErrorCodes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(tw, "  %s:\t%d\n", code, s.ErrorCodes[code])
	}

	return tw.Flush()
}
