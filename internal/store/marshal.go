package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/hitkit/internal/ir"
)

// marshalJSON encodes v as compact JSON TEXT with HTML escaping disabled,
// so stored records read the same as the CLI prints them.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func marshalHit(h ir.Hit) (string, error) {
	s, err := marshalJSON(h)
	if err != nil {
		return "", fmt.Errorf("marshal hit: %w", err)
	}
	return s, nil
}

func unmarshalHit(data string) (ir.Hit, error) {
	var h ir.Hit
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		return ir.Hit{}, fmt.Errorf("unmarshal hit: %w", err)
	}
	return h, nil
}

// marshalROIs encodes the regions of interest of a wire. A wire without
// regions is stored as an empty array, never null.
func marshalROIs(rois []ir.ROI) (string, error) {
	if rois == nil {
		rois = []ir.ROI{}
	}
	s, err := marshalJSON(rois)
	if err != nil {
		return "", fmt.Errorf("marshal rois: %w", err)
	}
	return s, nil
}

func unmarshalROIs(data string) ([]ir.ROI, error) {
	rois := []ir.ROI{}
	if data == "" {
		return rois, nil
	}
	if err := json.Unmarshal([]byte(data), &rois); err != nil {
		return nil, fmt.Errorf("unmarshal rois: %w", err)
	}
	return rois, nil
}

func marshalSamples(samples []int16) (string, error) {
	if samples == nil {
		samples = []int16{}
	}
	s, err := marshalJSON(samples)
	if err != nil {
		return "", fmt.Errorf("marshal samples: %w", err)
	}
	return s, nil
}

func unmarshalSamples(data string) ([]int16, error) {
	samples := []int16{}
	if data == "" {
		return samples, nil
	}
	if err := json.Unmarshal([]byte(data), &samples); err != nil {
		return nil, fmt.Errorf("unmarshal samples: %w", err)
	}
	return samples, nil
}

// ptrColumns maps a relation entry to its nullable target columns.
func ptrColumns(p ir.Ptr) (sql.NullString, sql.NullInt64) {
	if !p.Valid() {
		return sql.NullString{}, sql.NullInt64{}
	}
	return sql.NullString{String: string(p.Product), Valid: true},
		sql.NullInt64{Int64: int64(p.Key), Valid: true}
}

func ptrFromColumns(product sql.NullString, key sql.NullInt64) ir.Ptr {
	if !product.Valid || !key.Valid {
		return ir.Ptr{}
	}
	return ir.Ptr{Product: ir.ProductID(product.String), Key: int(key.Int64)}
}
