package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitkit/internal/event"
	"github.com/roach88/hitkit/internal/fixture"
	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/store"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	*RootOptions
	DatabasePath string
	GeometryPath string
	ProcessName  string
}

// LoadResult is the JSON payload of a successful load.
type LoadResult struct {
	Process  string          `json:"process"`
	Fixtures int             `json:"fixtures"`
	Summary  fixture.Summary `json:"summary"`
}

func (r LoadResult) String() string {
	return fmt.Sprintf("loaded %d event(s) as %q: %d raw digits, %d wires, %d hits",
		r.Summary.Events, r.Process, r.Summary.RawDigits, r.Summary.Wires, r.Summary.Hits)
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>...",
		Short: "Write fixture events into a database",
		Long: `Write the raw digits, wires and hits of each fixture into the database,
creating it if needed. Hits are related to the wires and raw digits the
fixture names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "hitkit.db", "path to SQLite database")
	cmd.Flags().StringVar(&opts.GeometryPath, "geometry", "", "path to CUE detector description (required)")
	cmd.Flags().StringVar(&opts.ProcessName, "process", "load", "process name recorded on written products")
	_ = cmd.MarkFlagRequired("geometry")

	return cmd
}

func runLoad(cmd *cobra.Command, opts *LoadOptions, paths []string) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	geo, err := geometry.LoadFile(opts.GeometryPath)
	if err != nil {
		return out.Fail(ExitFailure, "invalid geometry", err)
	}

	// Parse everything before the database is touched.
	files := make([]*fixture.File, len(paths))
	for i, path := range paths {
		if files[i], err = fixture.LoadFile(path); err != nil {
			return failFixture(out, path, err)
		}
	}

	st, err := store.Open(opts.DatabasePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st)

	result := LoadResult{Process: opts.ProcessName}
	for i, f := range files {
		// Module labels are unique per process, so each fixture gets its own.
		proc, err := event.NewProcess(opts.ProcessName, st, opts.tokens())
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --process", err)
		}
		sum, err := fixture.Apply(ctx, proc, geo, f)
		if err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("load %s", paths[i]), err)
		}
		out.VerboseLog("%s: %d events, %d hits", paths[i], sum.Events, sum.Hits)
		result.Fixtures++
		result.Summary.Add(sum)
	}

	return out.Success(result)
}
