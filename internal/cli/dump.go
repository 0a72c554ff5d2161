package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
)

// DumpOptions holds options for the dump command.
type DumpOptions struct {
	*RootOptions
	DatabasePath string
	EventID      string
	Kind         string
	Channel      uint32
	OnChannel    bool
}

// DumpEntry is one element of a dumped collection. Relation targets are
// given as tag[key], or "-" when absent.
type DumpEntry struct {
	Index    int    `json:"index"`
	Record   any    `json:"record"`
	Wire     string `json:"wire,omitempty"`
	RawDigit string `json:"raw_digit,omitempty"`

	line string
}

// DumpResult is the JSON payload of the dump command. Products is set when
// no tag was given, Entries otherwise.
type DumpResult struct {
	Event    ir.EventID          `json:"event"`
	Products []store.ProductInfo `json:"products,omitempty"`
	Tag      string              `json:"tag,omitempty"`
	Kind     ir.ProductKind      `json:"kind,omitempty"`
	Channel  *uint32             `json:"channel,omitempty"`
	Entries  []DumpEntry         `json:"entries,omitempty"`
}

func (r DumpResult) String() string {
	var b strings.Builder
	if r.Tag == "" {
		fmt.Fprintf(&b, "event %s: %d product(s)", r.Event, len(r.Products))
		for _, p := range r.Products {
			fmt.Fprintf(&b, "\n%d\t%s\t%s\t%d", p.Seq, p.Kind, p.Tag(), p.Size)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "event %s: %s %s", r.Event, r.Kind, r.Tag)
	if r.Channel != nil {
		fmt.Fprintf(&b, " on channel %d", *r.Channel)
	}
	fmt.Fprintf(&b, " (%d)", len(r.Entries))
	for _, e := range r.Entries {
		b.WriteString("\n")
		b.WriteString(e.line)
	}
	return b.String()
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump [tag]",
		Short: "Print the products of one event",
		Long: `Without a tag, list every product stored for the event. With a tag,
print the selected collection together with its relations.`,
		Example: `  hitkit dump --db run.db --event 1:0:1
  hitkit dump --db run.db --event 1:0:1 gaushit
  hitkit dump --db run.db --event 1:0:1 --channel 22 gaushit
  hitkit dump --db run.db --event 1:0:1 --kind wires caldata::load`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}
			opts.OnChannel = cmd.Flags().Changed("channel")
			return runDump(cmd, opts, tag)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "hitkit.db", "path to SQLite database")
	cmd.Flags().StringVar(&opts.EventID, "event", "", "event to dump (run:subrun:event, required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", string(ir.KindHits), "collection kind (hits|wires|rawdigits)")
	cmd.Flags().Uint32Var(&opts.Channel, "channel", 0, "only print hits on this channel")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func runDump(cmd *cobra.Command, opts *DumpOptions, tagArg string) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	id, err := ir.ParseEventID(opts.EventID)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --event", err)
	}
	tag, err := parseTagFlag("tag", tagArg)
	if err != nil {
		return err
	}
	kind := ir.ProductKind(opts.Kind)
	switch kind {
	case ir.KindHits, ir.KindWires, ir.KindRawDigits:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --kind %q", opts.Kind))
	}
	if opts.OnChannel && kind != ir.KindHits {
		return NewExitError(ExitCommandError, "--channel only applies to hits")
	}

	st, err := openStore(opts.DatabasePath)
	if err != nil {
		return err
	}
	defer closeStore(st)

	products, err := st.Products(ctx, id)
	if err != nil {
		return out.Fail(ExitFailure, "list products", err)
	}
	result := DumpResult{Event: id}
	if tag.Empty() {
		result.Products = products
		return out.Success(result)
	}

	d := dumper{st: st, ev: id, names: productNames(products)}
	result.Kind = kind
	switch kind {
	case ir.KindHits:
		if opts.OnChannel {
			result.Channel = &opts.Channel
		}
		result.Tag, result.Entries, err = d.hits(ctx, tag, result.Channel)
	case ir.KindWires:
		result.Tag, result.Entries, err = d.wires(ctx, tag)
	default:
		result.Tag, result.Entries, err = d.rawDigits(ctx, tag)
	}
	if err != nil {
		return out.Fail(ExitFailure, fmt.Sprintf("dump %s", tag), err)
	}
	return out.Success(result)
}

func productNames(products []store.ProductInfo) map[ir.ProductID]string {
	names := make(map[ir.ProductID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Tag().String()
	}
	return names
}

type dumper struct {
	st    *store.Store
	ev    ir.EventID
	names map[ir.ProductID]string
}

// relations reads the relation table of kind stored with tag. A collection
// written without that table yields nil.
func (d dumper) relations(ctx context.Context, tag ir.InputTag, kind ir.RelationKind) (ir.Relations, error) {
	rel, err := d.st.ReadRelations(ctx, d.ev, tag, kind)
	if errors.Is(err, store.ErrProductNotFound) {
		return nil, nil
	}
	return rel, err
}

func (d dumper) target(rel ir.Relations, i int) string {
	p, ok := rel.Target(i)
	if !ok {
		return "-"
	}
	name, ok := d.names[p.Product]
	if !ok {
		name = string(p.Product)
	}
	return fmt.Sprintf("%s[%d]", name, p.Key)
}

func (d dumper) hits(ctx context.Context, tag ir.InputTag, ch *uint32) (string, []DumpEntry, error) {
	var (
		hits ir.Collection[ir.Hit]
		keys []int
		err  error
	)
	if ch != nil {
		hits, keys, err = d.st.ReadHitsOnChannel(ctx, d.ev, tag, ir.ChannelID(*ch))
	} else {
		hits, err = d.st.ReadHits(ctx, d.ev, tag)
	}
	if err != nil {
		return "", nil, err
	}
	wires, err := d.relations(ctx, tag, ir.RelHitWire)
	if err != nil {
		return "", nil, err
	}
	digits, err := d.relations(ctx, tag, ir.RelHitRawDigit)
	if err != nil {
		return "", nil, err
	}

	entries := make([]DumpEntry, len(hits.Items))
	for n, h := range hits.Items {
		i := n
		if keys != nil {
			i = keys[n]
		}
		e := DumpEntry{Index: i, Record: h, Wire: d.target(wires, i), RawDigit: d.target(digits, i)}
		e.line = fmt.Sprintf("[%d] ch=%d %s %s ticks=[%d,%d) peak=%g amp=%g integral=%g summed=%g wire=%s digit=%s",
			i, h.Channel, h.WireID, h.View, h.StartTick, h.EndTick,
			h.PeakTime, h.PeakAmplitude, h.Integral, h.SummedADC, e.Wire, e.RawDigit)
		entries[n] = e
	}
	return d.names[hits.Product], entries, nil
}

func (d dumper) wires(ctx context.Context, tag ir.InputTag) (string, []DumpEntry, error) {
	wires, err := d.st.ReadWires(ctx, d.ev, tag)
	if err != nil {
		return "", nil, err
	}
	digits, err := d.relations(ctx, tag, ir.RelWireRawDigit)
	if err != nil {
		return "", nil, err
	}

	entries := make([]DumpEntry, len(wires.Items))
	for i, w := range wires.Items {
		e := DumpEntry{Index: i, Record: w, RawDigit: d.target(digits, i)}
		e.line = fmt.Sprintf("[%d] ch=%d %s samples=%d rois=%d digit=%s",
			i, w.Channel, w.View, w.NSamples, len(w.ROIs), e.RawDigit)
		entries[i] = e
	}
	return d.names[wires.Product], entries, nil
}

func (d dumper) rawDigits(ctx context.Context, tag ir.InputTag) (string, []DumpEntry, error) {
	digits, err := d.st.ReadRawDigits(ctx, d.ev, tag)
	if err != nil {
		return "", nil, err
	}

	entries := make([]DumpEntry, len(digits.Items))
	for i, r := range digits.Items {
		e := DumpEntry{Index: i, Record: r}
		e.line = fmt.Sprintf("[%d] ch=%d pedestal=%g samples=%d", i, r.Channel, r.Pedestal, len(r.Samples))
		entries[i] = e
	}
	return d.names[digits.Product], entries, nil
}
