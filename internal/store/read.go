package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/hitkit/internal/ir"
)

// Lookup resolves tag to the product of the given kind in event ev.
// When the tag leaves the process unset the most recently written product
// wins. Returns ErrProductNotFound when nothing matches.
func (s *Store) Lookup(ctx context.Context, ev ir.EventID, tag ir.InputTag, kind ir.ProductKind) (ProductInfo, error) {
	query := `
		SELECT p.seq, p.product_id, p.process, p.label, p.instance, p.kind, p.process_token, p.size
		FROM products p
		JOIN events e ON p.event_id = e.id
		WHERE e.run = ? AND e.subrun = ? AND e.event = ?
		  AND p.label = ? AND p.instance = ? AND p.kind = ?`
	args := []any{
		ev.Run, ev.SubRun, ev.Event,
		ir.NormalizeName(tag.Label), ir.NormalizeName(tag.Instance), string(kind),
	}
	if tag.Process != "" {
		query += ` AND p.process = ?`
		args = append(args, ir.NormalizeName(tag.Process))
	}
	query += ` ORDER BY p.seq DESC LIMIT 1`

	info, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ProductInfo{}, fmt.Errorf("%s %s in event %s: %w", kind, tag, ev, ErrProductNotFound)
	}
	if err != nil {
		return ProductInfo{}, fmt.Errorf("lookup %s %s: %w", kind, tag, err)
	}
	return info, nil
}

// Products lists every product of event ev in write order.
// Returns an empty slice (not nil) if the event holds nothing.
func (s *Store) Products(ctx context.Context, ev ir.EventID) ([]ProductInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.seq, p.product_id, p.process, p.label, p.instance, p.kind, p.process_token, p.size
		FROM products p
		JOIN events e ON p.event_id = e.id
		WHERE e.run = ? AND e.subrun = ? AND e.event = ?
		ORDER BY p.seq ASC
	`, ev.Run, ev.SubRun, ev.Event)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []ProductInfo{}
	for rows.Next() {
		info, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// ReadHits returns the hit collection selected by tag.
func (s *Store) ReadHits(ctx context.Context, ev ir.EventID, tag ir.InputTag) (ir.Collection[ir.Hit], error) {
	info, err := s.Lookup(ctx, ev, tag, ir.KindHits)
	if err != nil {
		return ir.Collection[ir.Hit]{}, fmt.Errorf("read hits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, record FROM hits WHERE product_seq = ? ORDER BY idx ASC
	`, info.Seq)
	if err != nil {
		return ir.Collection[ir.Hit]{}, fmt.Errorf("query hits: %w", err)
	}
	_, hits, err := scanHits(rows, info.Size)
	if err != nil {
		return ir.Collection[ir.Hit]{}, err
	}
	return ir.Collection[ir.Hit]{Product: info.ID, Items: hits}, nil
}

// ReadHitsOnChannel returns the hits of the collection selected by tag that
// sit on channel ch, with their keys in the full collection.
func (s *Store) ReadHitsOnChannel(ctx context.Context, ev ir.EventID, tag ir.InputTag, ch ir.ChannelID) (ir.Collection[ir.Hit], []int, error) {
	info, err := s.Lookup(ctx, ev, tag, ir.KindHits)
	if err != nil {
		return ir.Collection[ir.Hit]{}, nil, fmt.Errorf("read hits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, record FROM hits WHERE product_seq = ? AND channel = ? ORDER BY idx ASC
	`, info.Seq, ch)
	if err != nil {
		return ir.Collection[ir.Hit]{}, nil, fmt.Errorf("query hits on channel %d: %w", ch, err)
	}
	keys, hits, err := scanHits(rows, 0)
	if err != nil {
		return ir.Collection[ir.Hit]{}, nil, err
	}
	return ir.Collection[ir.Hit]{Product: info.ID, Items: hits}, keys, nil
}

func scanHits(rows *sql.Rows, size int) ([]int, []ir.Hit, error) {
	defer rows.Close()

	keys := make([]int, 0, size)
	hits := make([]ir.Hit, 0, size)
	for rows.Next() {
		var (
			idx    int
			record string
		)
		if err := rows.Scan(&idx, &record); err != nil {
			return nil, nil, fmt.Errorf("scan hit: %w", err)
		}
		h, err := unmarshalHit(record)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, idx)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate hits: %w", err)
	}
	return keys, hits, nil
}

// ReadWires returns the wire collection selected by tag.
func (s *Store) ReadWires(ctx context.Context, ev ir.EventID, tag ir.InputTag) (ir.Collection[ir.Wire], error) {
	info, err := s.Lookup(ctx, ev, tag, ir.KindWires)
	if err != nil {
		return ir.Collection[ir.Wire]{}, fmt.Errorf("read wires: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, view, n_samples, rois FROM wires WHERE product_seq = ? ORDER BY idx ASC
	`, info.Seq)
	if err != nil {
		return ir.Collection[ir.Wire]{}, fmt.Errorf("query wires: %w", err)
	}
	defer rows.Close()

	wires := make([]ir.Wire, 0, info.Size)
	for rows.Next() {
		var (
			w          ir.Wire
			view, rois string
		)
		if err := rows.Scan(&w.Channel, &view, &w.NSamples, &rois); err != nil {
			return ir.Collection[ir.Wire]{}, fmt.Errorf("scan wire: %w", err)
		}
		if w.View, err = ir.ParseView(view); err != nil {
			return ir.Collection[ir.Wire]{}, fmt.Errorf("scan wire: %w", err)
		}
		if w.ROIs, err = unmarshalROIs(rois); err != nil {
			return ir.Collection[ir.Wire]{}, err
		}
		wires = append(wires, w)
	}
	if err := rows.Err(); err != nil {
		return ir.Collection[ir.Wire]{}, fmt.Errorf("iterate wires: %w", err)
	}
	return ir.Collection[ir.Wire]{Product: info.ID, Items: wires}, nil
}

// ReadRawDigits returns the raw digit collection selected by tag.
func (s *Store) ReadRawDigits(ctx context.Context, ev ir.EventID, tag ir.InputTag) (ir.Collection[ir.RawDigit], error) {
	info, err := s.Lookup(ctx, ev, tag, ir.KindRawDigits)
	if err != nil {
		return ir.Collection[ir.RawDigit]{}, fmt.Errorf("read raw digits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, pedestal, samples FROM raw_digits WHERE product_seq = ? ORDER BY idx ASC
	`, info.Seq)
	if err != nil {
		return ir.Collection[ir.RawDigit]{}, fmt.Errorf("query raw digits: %w", err)
	}
	defer rows.Close()

	digits := make([]ir.RawDigit, 0, info.Size)
	for rows.Next() {
		var (
			d       ir.RawDigit
			samples string
		)
		if err := rows.Scan(&d.Channel, &d.Pedestal, &samples); err != nil {
			return ir.Collection[ir.RawDigit]{}, fmt.Errorf("scan raw digit: %w", err)
		}
		if d.Samples, err = unmarshalSamples(samples); err != nil {
			return ir.Collection[ir.RawDigit]{}, err
		}
		digits = append(digits, d)
	}
	if err := rows.Err(); err != nil {
		return ir.Collection[ir.RawDigit]{}, fmt.Errorf("iterate raw digits: %w", err)
	}
	return ir.Collection[ir.RawDigit]{Product: info.ID, Items: digits}, nil
}

// ReadRelations returns the relation table of the given kind stored next
// to the collection selected by tag. The table is index-aligned with that
// collection: the left collection is resolved first, and the relations are
// read from the same process.
func (s *Store) ReadRelations(ctx context.Context, ev ir.EventID, tag ir.InputTag, kind ir.RelationKind) (ir.Relations, error) {
	left, err := s.Lookup(ctx, ev, tag, kind.Left())
	if err != nil {
		return nil, fmt.Errorf("read %s relations: %w", kind, err)
	}
	info, err := s.Lookup(ctx, ev, left.Tag(), kind.ProductKind())
	if err != nil {
		return nil, fmt.Errorf("read %s relations: %w", kind, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT target_product, target_key FROM relations WHERE product_seq = ? ORDER BY idx ASC
	`, info.Seq)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	rel := make(ir.Relations, 0, info.Size)
	for rows.Next() {
		var (
			product sql.NullString
			key     sql.NullInt64
		)
		if err := rows.Scan(&product, &key); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		rel = append(rel, ptrFromColumns(product, key))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relations: %w", err)
	}
	return rel, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (ProductInfo, error) {
	var (
		info     ProductInfo
		id, kind string
	)
	if err := row.Scan(
		&info.Seq, &id, &info.Key.Process, &info.Key.Label, &info.Key.Instance,
		&kind, &info.Token, &info.Size,
	); err != nil {
		return ProductInfo{}, err
	}
	info.ID = ir.ProductID(id)
	info.Kind = ir.ProductKind(kind)
	return info, nil
}
