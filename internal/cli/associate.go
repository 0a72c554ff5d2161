package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/event"
	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
)

// AssociateOptions holds options for the associate command.
type AssociateOptions struct {
	*RootOptions
	DatabasePath   string
	EventID        string
	Hits           string
	Wires          string
	RawDigits      string
	DigitsViaWires bool
	Label          string
	Instance       string
	ProcessName    string
}

// CommitResult summarizes hit collections committed by associate or refine.
type CommitResult struct {
	Output         string `json:"output"`
	Events         int    `json:"events"`
	Skipped        int    `json:"skipped"`
	Hits           int    `json:"hits"`
	WireRelations  int    `json:"wire_relations"`
	DigitRelations int    `json:"digit_relations"`
}

func (r CommitResult) String() string {
	s := fmt.Sprintf("%s: %d hits in %d event(s), %d wire relations, %d raw digit relations",
		r.Output, r.Hits, r.Events, r.WireRelations, r.DigitRelations)
	if r.Skipped > 0 {
		s += fmt.Sprintf(" (%d event(s) skipped)", r.Skipped)
	}
	return s
}

// NewAssociateCommand creates the associate command.
func NewAssociateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssociateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "associate",
		Short: "Relate stored hits to wires and raw digits by channel",
		Long: `Read a stored hit collection and commit a copy of it under a new label,
relating every hit to the wire and raw digit on its channel.

Tags have the form label[:instance[:process]]; a tag without a process
selects the most recently written one.`,
		Example: `  hitkit associate --db run.db --hits gaushit --wires caldata --digits daq --label assoc
  hitkit associate --db run.db --hits gaushit --wires caldata --digits-via-wires --label assoc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssociate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "hitkit.db", "path to SQLite database")
	cmd.Flags().StringVar(&opts.EventID, "event", "", "only process this event (run:subrun:event)")
	cmd.Flags().StringVar(&opts.Hits, "hits", "", "tag of the hit collection to associate (required)")
	cmd.Flags().StringVar(&opts.Wires, "wires", "", "tag of the wire collection")
	cmd.Flags().StringVar(&opts.RawDigits, "digits", "", "tag of the raw digit collection")
	cmd.Flags().BoolVar(&opts.DigitsViaWires, "digits-via-wires", false, "take raw digits from the wire relations")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label of the new hit collection (required)")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "instance name of the new hit collection")
	cmd.Flags().StringVar(&opts.ProcessName, "process", "associate", "process name recorded on written products")
	_ = cmd.MarkFlagRequired("hits")
	_ = cmd.MarkFlagRequired("label")
	cmd.MarkFlagsMutuallyExclusive("digits", "digits-via-wires")

	return cmd
}

func runAssociate(cmd *cobra.Command, opts *AssociateOptions) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	hitsTag, err := parseTagFlag("hits", opts.Hits)
	if err != nil {
		return err
	}
	var cfg collect.AssociatorConfig
	if cfg.Wires, err = parseTagFlag("wires", opts.Wires); err != nil {
		return err
	}
	if cfg.RawDigits, err = parseTagFlag("digits", opts.RawDigits); err != nil {
		return err
	}
	cfg.DigitsViaWires = opts.DigitsViaWires
	if cfg.DigitsViaWires && cfg.Wires.Empty() {
		return NewExitError(ExitCommandError, "--digits-via-wires needs --wires")
	}

	output := collect.Output{
		Instance:   opts.Instance,
		WireAssns:  !cfg.Wires.Empty(),
		DigitAssns: cfg.DigitsViaWires || !cfg.RawDigits.Empty(),
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
		hits, err := ev.Hits(ctx, hitsTag)
		if errors.Is(err, store.ErrProductNotFound) {
			out.VerboseLog("event %s: no %s hits, skipped", id, hitsTag)
			result.Skipped++
			continue
		}
		if err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}

		a := collect.NewAssociator(output, ev, cfg)
		a.UseHits(hits.Items)
		if err := a.Commit(ctx, ev); err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}
		if err := result.add(ctx, ev, outputTag(mod, output), output, len(hits.Items)); err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("event %s", id), err)
		}
	}

	return out.Success(result)
}

// newModule starts a process holding a single module that declares output.
func newModule(st *store.Store, process, label string, output collect.Output, gen event.TokenGenerator) (*event.Module, error) {
	proc, err := event.NewProcess(process, st, gen)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --process", err)
	}
	mod, err := proc.Module(label)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --label", err)
	}
	if err := collect.Declare(mod, output); err != nil {
		return nil, WrapExitError(ExitCommandError, "declare output", err)
	}
	return mod, nil
}

// outputTag is the fully qualified tag the module writes output under.
func outputTag(mod *event.Module, output collect.Output) ir.InputTag {
	return ir.InputTag{Label: mod.Label(), Instance: output.Instance, Process: mod.Process()}
}

// add counts the committed collection by reading its relation tables back.
func (r *CommitResult) add(ctx context.Context, ev *event.Event, tag ir.InputTag, output collect.Output, hits int) error {
	r.Events++
	r.Hits += hits
	if output.WireAssns {
		rel, err := ev.Relations(ctx, tag, ir.RelHitWire)
		if err != nil {
			return err
		}
		r.WireRelations += rel.Present()
	}
	if output.DigitAssns {
		rel, err := ev.Relations(ctx, tag, ir.RelHitRawDigit)
		if err != nil {
			return err
		}
		r.DigitRelations += rel.Present()
	}
	return nil
}
