package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/ir"
)

// ErrNotCommitted is returned when a pending reference names an output
// that has not been committed in this event yet.
var ErrNotCommitted = errors.New("output not committed in this event")

// Event is processing unit id as seen by one module.
// It implements collect.Sink and collect.Source.
type Event struct {
	id        ir.EventID
	mod       *Module
	committed map[outputKey]bool
}

var (
	_ collect.Sink   = (*Event)(nil)
	_ collect.Source = (*Event)(nil)
)

// ID returns the event identifier.
func (e *Event) ID() ir.EventID { return e.id }

// Commit writes a hit collection and its relation tables under the declared
// output out.Instance. Relation tables the output was not declared with are
// rejected, and declared tables passed as nil are stored with every entry
// absent.
func (e *Event) Commit(ctx context.Context, out collect.Output, hits []ir.Hit, wires, digits ir.Relations) error {
	key, decl, err := e.mod.lookup(ir.KindHits, out.Instance)
	if err != nil {
		return err
	}
	if (wires != nil && !decl.wireAssns) || (digits != nil && !decl.digitAssns) {
		return &collect.Error{
			Code:    collect.ErrCodeUndeclaredOutput,
			Message: "relation table was not declared with the output",
			Output:  e.mod.qualified(key.instance),
		}
	}
	if wires == nil && decl.wireAssns {
		wires = make(ir.Relations, len(hits))
	}
	if digits == nil && decl.digitAssns {
		digits = make(ir.Relations, len(hits))
	}

	pk := e.mod.key(key.instance)
	if err := e.mod.proc.store.WriteHits(ctx, e.id, e.mod.proc.token, pk, hits, wires, digits); err != nil {
		return fmt.Errorf("event %s: %w", e.id, err)
	}
	e.committed[key] = true

	slog.Info("committed hits",
		"event", e.id.String(),
		"product", e.mod.qualified(key.instance),
		"hits", len(hits),
		"wire_relations", wires.Present(),
		"digit_relations", digits.Present(),
	)
	return nil
}

// PutRawDigits writes a raw digit collection under the declared instance.
func (e *Event) PutRawDigits(ctx context.Context, instance string, digits []ir.RawDigit) error {
	key, _, err := e.mod.lookup(ir.KindRawDigits, instance)
	if err != nil {
		return err
	}
	pk := e.mod.key(key.instance)
	if err := e.mod.proc.store.WriteRawDigits(ctx, e.id, e.mod.proc.token, pk, digits); err != nil {
		return fmt.Errorf("event %s: %w", e.id, err)
	}
	e.committed[key] = true
	slog.Info("committed raw digits", "event", e.id.String(),
		"product", e.mod.qualified(key.instance), "raw_digits", len(digits))
	return nil
}

// PutWires writes a wire collection under the declared instance. digits is
// the wire→raw digit relation table, nil when not declared.
func (e *Event) PutWires(ctx context.Context, instance string, wires []ir.Wire, digits ir.Relations) error {
	key, decl, err := e.mod.lookup(ir.KindWires, instance)
	if err != nil {
		return err
	}
	if digits != nil && !decl.digitAssns {
		return &collect.Error{
			Code:    collect.ErrCodeUndeclaredOutput,
			Message: "relation table was not declared with the output",
			Output:  e.mod.qualified(key.instance),
		}
	}
	if digits == nil && decl.digitAssns {
		digits = make(ir.Relations, len(wires))
	}

	pk := e.mod.key(key.instance)
	if err := e.mod.proc.store.WriteWires(ctx, e.id, e.mod.proc.token, pk, wires, digits); err != nil {
		return fmt.Errorf("event %s: %w", e.id, err)
	}
	e.committed[key] = true
	slog.Info("committed wires", "event", e.id.String(),
		"product", e.mod.qualified(key.instance), "wires", len(wires),
		"digit_relations", digits.Present())
	return nil
}

// Resolve turns a pending reference to an element of one of this module's
// outputs into a pointer. The output must have been committed in this event.
func (e *Event) Resolve(kind ir.ProductKind, ref ir.PendingRef) (ir.Ptr, error) {
	key := outputKey{kind: kind, instance: ir.NormalizeName(ref.Output)}
	if !e.committed[key] {
		return ir.Ptr{}, fmt.Errorf("resolve %s %s[%d]: %w",
			kind, e.mod.qualified(key.instance), ref.Index, ErrNotCommitted)
	}
	return ref.Resolve(e.mod.key(key.instance).ID(kind)), nil
}

// Wires reads a stored wire collection.
func (e *Event) Wires(ctx context.Context, tag ir.InputTag) (ir.Collection[ir.Wire], error) {
	return e.mod.proc.store.ReadWires(ctx, e.id, tag)
}

// RawDigits reads a stored raw digit collection.
func (e *Event) RawDigits(ctx context.Context, tag ir.InputTag) (ir.Collection[ir.RawDigit], error) {
	return e.mod.proc.store.ReadRawDigits(ctx, e.id, tag)
}

// Hits reads a stored hit collection.
func (e *Event) Hits(ctx context.Context, tag ir.InputTag) (ir.Collection[ir.Hit], error) {
	return e.mod.proc.store.ReadHits(ctx, e.id, tag)
}

// Relations reads the relation table of kind stored with the collection
// selected by tag. A missing table is an error, not an empty table.
func (e *Event) Relations(ctx context.Context, tag ir.InputTag, kind ir.RelationKind) (ir.Relations, error) {
	return e.mod.proc.store.ReadRelations(ctx, e.id, tag, kind)
}
