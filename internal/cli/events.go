package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/ir"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	After int64
	Limit int
	Call  string // optional - events of one call only
}

// EventsResult holds the events command's JSON output.
type EventsResult struct {
	Events []ir.EventRecord `json:"events"`
	Count  int              `json:"count"`
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the event log",
		Long: `List events in append order.

Each line shows the sequence number, the tagged variant as
Pallet[pallet_index].Variant[event_index], and the payload.

Examples:
  janus events --db ./janus.db
  janus events --db ./janus.db --after 10 --limit 5
  janus events --db ./janus.db --call <call-id> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "only events with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 = all)")
	cmd.Flags().StringVar(&opts.Call, "call", "", "only events deposited by this call id")

	return cmd
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var events []ir.EventRecord
	if opts.Call != "" {
		events, err = st.ReadEventsForCall(ctx, opts.Call)
	} else {
		events, err = st.ReadEvents(ctx, opts.After, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.Success(EventsResult{Events: events, Count: len(events)})
	}

	w := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(w, "No events.")
		return nil
	}
	for _, ev := range events {
		fmt.Fprintln(w, formatEvent(ev))
		if opts.Verbose {
			fmt.Fprintf(w, "    id=%s call=%s\n", ev.ID, ev.CallID)
		}
	}
	return nil
}
