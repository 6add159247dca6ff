package widgets

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

// Positions accepted by moveID
const (
	positionBefore = "before"
	positionAfter  = "after"
	positionStart  = "start"
	positionEnd    = "end"
)

type reorderOptions struct {
	before  string
	after   string
	toStart bool
	toEnd   bool
}

// moveID returns ids with id moved to position, relative to target for
// before and after
func moveID(ids []string, id, position, target string) ([]string, error) {
	from := slices.Index(ids, id)
	if from < 0 {
		return nil, fmt.Errorf("widget %q not found", id)
	}
	if target == id {
		return nil, fmt.Errorf("cannot move widget %q relative to itself", id)
	}

	rest := slices.Delete(slices.Clone(ids), from, from+1)
	switch position {
	case positionStart:
		return slices.Insert(rest, 0, id), nil
	case positionEnd:
		return append(rest, id), nil
	case positionBefore, positionAfter:
		at := slices.Index(rest, target)
		if at < 0 {
			return nil, fmt.Errorf("widget %q not found", target)
		}
		if position == positionAfter {
			at++
		}
		return slices.Insert(rest, at, id), nil
	default:
		return nil, fmt.Errorf("unknown position %q", position)
	}
}

func newReorderCommand() *cobra.Command {
	opts := &reorderOptions{}

	cmd := &cobra.Command{
		Use:   "reorder ID",
		Short: "Change a widget's place in the rotation",
		Long: `Move a widget within the rotation order.

The command reads every widget, moves the given one and writes the whole
order back, so orders are renumbered 0..n-1.`,
		Example: `  # Move a widget before another
  wkioskctl widgets reorder menu --before welcome

  # Move a widget after another
  wkioskctl widgets reorder weather --after menu

  # Move to start/end
  wkioskctl widgets reorder alert --to-start
  wkioskctl widgets reorder credits --to-end`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			// Validate flags
			count := 0
			if opts.before != "" {
				count++
			}
			if opts.after != "" {
				count++
			}
			if opts.toStart {
				count++
			}
			if opts.toEnd {
				count++
			}
			if count != 1 {
				return fmt.Errorf("exactly one of --before, --after, --to-start, or --to-end is required")
			}

			var target, position string
			switch {
			case opts.before != "":
				target, position = opts.before, positionBefore
			case opts.after != "":
				target, position = opts.after, positionAfter
			case opts.toStart:
				position = positionStart
			case opts.toEnd:
				position = positionEnd
			}

			client, err := util.GetClientFromCommand(cmd)
			if err != nil {
				return err
			}

			widgets, err := client.ListAllWidgets(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing widgets: %w", err)
			}
			content.SortWidgets(widgets)

			ids := make([]string, 0, len(widgets))
			for _, w := range widgets {
				ids = append(ids, w.ID)
			}
			ordered, err := moveID(ids, id, position, target)
			if err != nil {
				return err
			}

			if err := client.ReorderWidgets(cmd.Context(), ordered); err != nil {
				return fmt.Errorf("error reordering widgets: %w", err)
			}

			out := cmd.OutOrStdout()
			if target != "" {
				fmt.Fprintf(out, "Moved widget %q %s %q\n", id, position, target)
			} else {
				fmt.Fprintf(out, "Moved widget %q to %s of rotation\n", id, position)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.before, "before", "", "Place widget before this one")
	f.StringVar(&opts.after, "after", "", "Place widget after this one")
	f.BoolVar(&opts.toStart, "to-start", false, "Move widget to start of rotation")
	f.BoolVar(&opts.toEnd, "to-end", false, "Move widget to end of rotation")

	return cmd
}
