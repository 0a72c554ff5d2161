package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/hitkit/internal/ir"
)

// WriteHits stores a hit collection and its relation tables in one
// transaction. A nil relation table is not written at all; a non-nil one
// must have one entry per hit.
//
// Products are written once. Writing an empty collection over an existing
// product is a no-op; anything else returns ErrAlreadyCommitted.
func (s *Store) WriteHits(
	ctx context.Context,
	ev ir.EventID,
	token string,
	key ProductKey,
	hits []ir.Hit,
	wires, digits ir.Relations,
) error {
	return s.writeProduct(ctx, ev, token, key, ir.KindHits, len(hits),
		func(tx *sql.Tx, seq int64) error {
			for i, h := range hits {
				record, err := marshalHit(h)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO hits (product_seq, idx, channel, record)
					VALUES (?, ?, ?, ?)
				`, seq, i, h.Channel, record); err != nil {
					return fmt.Errorf("insert hit %d: %w", i, err)
				}
			}
			return nil
		},
		relationWrite{ir.RelHitWire, wires},
		relationWrite{ir.RelHitRawDigit, digits},
	)
}

// WriteWires stores a wire collection and, when digits is non-nil, its
// wire→raw digit relation table.
func (s *Store) WriteWires(
	ctx context.Context,
	ev ir.EventID,
	token string,
	key ProductKey,
	wires []ir.Wire,
	digits ir.Relations,
) error {
	return s.writeProduct(ctx, ev, token, key, ir.KindWires, len(wires),
		func(tx *sql.Tx, seq int64) error {
			for i, w := range wires {
				rois, err := marshalROIs(w.ROIs)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO wires (product_seq, idx, channel, view, n_samples, rois)
					VALUES (?, ?, ?, ?, ?, ?)
				`, seq, i, w.Channel, w.View.String(), w.NSamples, rois); err != nil {
					return fmt.Errorf("insert wire %d: %w", i, err)
				}
			}
			return nil
		},
		relationWrite{ir.RelWireRawDigit, digits},
	)
}

// WriteRawDigits stores a raw digit collection.
func (s *Store) WriteRawDigits(
	ctx context.Context,
	ev ir.EventID,
	token string,
	key ProductKey,
	digits []ir.RawDigit,
) error {
	return s.writeProduct(ctx, ev, token, key, ir.KindRawDigits, len(digits),
		func(tx *sql.Tx, seq int64) error {
			for i, d := range digits {
				samples, err := marshalSamples(d.Samples)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO raw_digits (product_seq, idx, channel, pedestal, samples)
					VALUES (?, ?, ?, ?, ?)
				`, seq, i, d.Channel, d.Pedestal, samples); err != nil {
					return fmt.Errorf("insert raw digit %d: %w", i, err)
				}
			}
			return nil
		},
	)
}

type relationWrite struct {
	kind ir.RelationKind
	rel  ir.Relations
}

// writeProduct claims the product row, writes its elements with fill and
// its relation tables, all in one transaction.
func (s *Store) writeProduct(
	ctx context.Context,
	ev ir.EventID,
	token string,
	key ProductKey,
	kind ir.ProductKind,
	size int,
	fill func(tx *sql.Tx, seq int64) error,
	relations ...relationWrite,
) error {
	key = key.normalized()
	op := fmt.Sprintf("write %s %s", kind, key.Label)

	for _, r := range relations {
		if r.rel != nil && len(r.rel) != size {
			return fmt.Errorf("%s: %s relations have %d entries for %d elements",
				op, r.kind, len(r.rel), size)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback() // No-op if committed

	eventID, err := ensureEvent(ctx, tx, ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	seq, inserted, err := insertProduct(ctx, tx, eventID, token, key, kind, size)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !inserted {
		if size == 0 {
			return nil
		}
		return fmt.Errorf("%s in event %s: %w", op, ev, ErrAlreadyCommitted)
	}

	if err := fill(tx, seq); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range relations {
		if r.rel == nil {
			continue
		}
		if err := writeRelations(ctx, tx, eventID, token, key, r.kind, r.rel); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func writeRelations(
	ctx context.Context,
	tx *sql.Tx,
	eventID int64,
	token string,
	key ProductKey,
	kind ir.RelationKind,
	rel ir.Relations,
) error {
	seq, inserted, err := insertProduct(ctx, tx, eventID, token, key, kind.ProductKind(), len(rel))
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("%s relations: %w", kind, ErrAlreadyCommitted)
	}

	for i, p := range rel {
		product, k := ptrColumns(p)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO relations (product_seq, idx, target_product, target_key)
			VALUES (?, ?, ?, ?)
		`, seq, i, product, k); err != nil {
			return fmt.Errorf("insert %s relation %d: %w", kind, i, err)
		}
	}
	return nil
}

// ensureEvent returns the row id of ev, creating it on first use.
func ensureEvent(ctx context.Context, tx *sql.Tx, ev ir.EventID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (run, subrun, event)
		VALUES (?, ?, ?)
		ON CONFLICT(run, subrun, event) DO NOTHING
	`, ev.Run, ev.SubRun, ev.Event); err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM events WHERE run = ? AND subrun = ? AND event = ?
	`, ev.Run, ev.SubRun, ev.Event).Scan(&id); err != nil {
		return 0, fmt.Errorf("select event: %w", err)
	}
	return id, nil
}

// insertProduct claims the product row. inserted is false when the
// product already exists in the event.
func insertProduct(
	ctx context.Context,
	tx *sql.Tx,
	eventID int64,
	token string,
	key ProductKey,
	kind ir.ProductKind,
	size int,
) (seq int64, inserted bool, err error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO products
		(event_id, product_id, process, label, instance, kind, process_token, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id, product_id) DO NOTHING
	`,
		eventID,
		string(key.ID(kind)),
		key.Process,
		key.Label,
		key.Instance,
		string(kind),
		token,
		size,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, false, nil
	}

	seq, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	return seq, true, nil
}
