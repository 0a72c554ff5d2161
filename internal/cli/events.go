package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hitkit/internal/store"
)

// EventsOptions holds options for the events command.
type EventsOptions struct {
	*RootOptions
	DatabasePath string
}

// EventsResult is the JSON payload of the events command.
type EventsResult struct {
	Events []store.EventRow `json:"events"`
}

func (r EventsResult) String() string {
	if len(r.Events) == 0 {
		return "no events"
	}
	var b strings.Builder
	for i, ev := range r.Events {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\t%d product(s)", ev.ID, ev.Products)
	}
	return b.String()
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the events stored in a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "hitkit.db", "path to SQLite database")

	return cmd
}

func runEvents(cmd *cobra.Command, opts *EventsOptions) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(opts.DatabasePath)
	if err != nil {
		return err
	}
	defer closeStore(st)

	rows, err := st.Events(cmd.Context())
	if err != nil {
		return out.Fail(ExitFailure, "list events", err)
	}
	return out.Success(EventsResult{Events: rows})
}
