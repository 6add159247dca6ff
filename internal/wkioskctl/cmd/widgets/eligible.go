package widgets

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

// Slot is one widget's place in a rotation cycle
type Slot struct {
	Index         int                 `json:"index"`
	OffsetSeconds int                 `json:"offsetSeconds"`
	DwellSeconds  int                 `json:"dwellSeconds"`
	WidgetID      string              `json:"widgetId"`
	Title         string              `json:"title"`
	Type          v1alpha1.WidgetType `json:"type"`
}

// Preview is the rotation a display would run at At
type Preview struct {
	At           time.Time `json:"at"`
	CycleSeconds int       `json:"cycleSeconds"`
	Slots        []Slot    `json:"slots"`
}

// Plan sorts widgets the way a display does, keeps those eligible at now
// and lays them out back to back from the start of a cycle
func Plan(widgets []v1alpha1.Widget, now time.Time) Preview {
	sorted := append([]v1alpha1.Widget(nil), widgets...)
	content.SortWidgets(sorted)

	p := Preview{At: now, Slots: []Slot{}}
	offset := time.Duration(0)
	for i, w := range content.FilterWidgets(sorted, now) {
		dwell := w.Dwell()
		p.Slots = append(p.Slots, Slot{
			Index:         i,
			OffsetSeconds: int(offset / time.Second),
			DwellSeconds:  int(dwell / time.Second),
			WidgetID:      w.ID,
			Title:         w.Title,
			Type:          w.Type,
		})
		offset += dwell
	}
	p.CycleSeconds = int(offset / time.Second)
	return p
}

func newEligibleCommand() *cobra.Command {
	var (
		output   string
		at       string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "Preview the rotation a display would run",
		Long: `Evaluate every widget's schedule at an instant and print the resulting
rotation with each widget's start offset within the cycle.

Schedules are evaluated in the --timezone location, which should match the
display's configured time zone.`,
		Example: `  # What is on screen right now
  wkioskctl widgets eligible

  # Preview Saturday morning in the display's time zone
  wkioskctl widgets eligible --at "2024-03-09 09:00" --timezone Africa/Casablanca`,
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
			widgets, err := client.ListWidgets(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing widgets: %w", err)
			}

			preview := Plan(widgets, now)
			if output == util.OutputJSON {
				return util.PrintJSON(cmd.OutOrStdout(), preview)
			}

			out := cmd.OutOrStdout()
			if len(preview.Slots) == 0 {
				fmt.Fprintf(out, "No widgets eligible at %s\n", now.Format(time.RFC3339))
				return nil
			}

			tw := util.NewTabWriter(out)
			fmt.Fprintf(tw, "#\tSTARTS\tDWELL\tID\tTYPE\tTITLE\n")
			for _, s := range preview.Slots {
				fmt.Fprintf(tw, "%d\t+%s\t%s\t%s\t%s\t%s\n",
					s.Index,
					time.Duration(s.OffsetSeconds)*time.Second,
					time.Duration(s.DwellSeconds)*time.Second,
					s.WidgetID,
					s.Type,
					util.Truncate(s.Title, 32),
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d widgets, cycle %s at %s\n",
				len(preview.Slots),
				time.Duration(preview.CycleSeconds)*time.Second,
				now.Format(time.RFC3339),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", util.OutputTable, "Output format (table, json)")
	cmd.Flags().StringVar(&at, "at", "", "Instant to evaluate schedules at (default now)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone of the display (default local)")
	return cmd
}
