package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/hit"
	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
)

// RefineOptions holds options for the refine command.
type RefineOptions struct {
	*RootOptions
	DatabasePath string
	EventID      string
	From         string
	Hits         string
	MinAmplitude float32
	NoWireAssns  bool
	NoDigitAssns bool
	Label        string
	Instance     string
	ProcessName  string
}

// NewRefineCommand creates the refine command.
func NewRefineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RefineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Filter stored hits and carry their relations over",
		Long: `Select hits from a stored collection and commit them under a new label.
Each new hit inherits the wire and raw digit that the hits of --from on the
same channel point to.

The command fails when hits of --from on one channel disagree about their
target, since the inherited relation would be ambiguous.`,
		Example: `  hitkit refine --db run.db --from gaushit --min-amplitude 10 --label hitfilter`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "hitkit.db", "path to SQLite database")
	cmd.Flags().StringVar(&opts.EventID, "event", "", "only process this event (run:subrun:event)")
	cmd.Flags().StringVar(&opts.From, "from", "", "tag of the hit collection relations are inherited from (required)")
	cmd.Flags().StringVar(&opts.Hits, "hits", "", "tag of the hits to refine (defaults to --from)")
	cmd.Flags().Float32Var(&opts.MinAmplitude, "min-amplitude", 0, "drop hits with a smaller peak amplitude")
	cmd.Flags().BoolVar(&opts.NoWireAssns, "no-wire-assns", false, "do not write hit→wire relations")
	cmd.Flags().BoolVar(&opts.NoDigitAssns, "no-digit-assns", false, "do not write hit→raw digit relations")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label of the new hit collection (required)")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "instance name of the new hit collection")
	cmd.Flags().StringVar(&opts.ProcessName, "process", "refine", "process name recorded on written products")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func runRefine(cmd *cobra.Command, opts *RefineOptions) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	from, err := parseTagFlag("from", opts.From)
	if err != nil {
		return err
	}
	hitsTag := from
	if opts.Hits != "" {
		if hitsTag, err = parseTagFlag("hits", opts.Hits); err != nil {
			return err
		}
	}

	output := collect.Output{
		Instance:   opts.Instance,
		WireAssns:  !opts.NoWireAssns,
		DigitAssns: !opts.NoDigitAssns,
	}

	st, err := openStore(opts.DatabasePath)
	if err != nil {
		return err
	}
	defer closeStore(st)

	mod, err := newModule(st, opts.ProcessName, opts.Label, output, opts.tokens())
	if err != nil {
		return err
	}
	events, err := selectEvents(ctx, st, opts.EventID)
	if err != nil {
		return err
	}

	result := CommitResult{Output: outputTag(mod, output).String()}
	for _, id := range events {
		ev := mod.Event(id)
		src, err := ev.Hits(ctx, hitsTag)
		if errors.Is(err, store.ErrProductNotFound) {
			out.VerboseLog("event %s: no %s hits, skipped", id, hitsTag)
			result.Skipped++
			continue
		}
		if err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}

		hits, err := selectHits(src.Items, opts.MinAmplitude)
		if err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}
		out.VerboseLog("event %s: kept %d of %d hits", id, len(hits), len(src.Items))

		r := collect.NewRefiner(output, ev, from)
		r.UseHits(hits)
		if err := r.Commit(ctx, ev); err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}
		if err := result.add(ctx, ev, outputTag(mod, output), output, len(hits)); err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}
	}

	return out.Success(result)
}

// selectHits copies the hits whose peak amplitude reaches minAmplitude.
func selectHits(from []ir.Hit, minAmplitude float32) ([]ir.Hit, error) {
	hits := make([]ir.Hit, 0, len(from))
	for _, h := range from {
		if h.PeakAmplitude < minAmplitude {
			continue
		}
		kept, err := hit.FromHit(h).Move()
		if err != nil {
			return nil, err
		}
		hits = append(hits, kept)
	}
	return hits, nil
}
