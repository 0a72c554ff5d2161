package store

import (
	"github.com/roach88/hitkit/internal/ir"
)

// ProductKey names the products written by one module instance of one
// process. The element kind completes it into a product identity.
type ProductKey struct {
	Process  string `json:"process"`
	Label    string `json:"label"`
	Instance string `json:"instance,omitempty"`
}

// ID returns the product identity for kind.
func (k ProductKey) ID(kind ir.ProductKind) ir.ProductID {
	return ir.ProductIDFor(k.Process, k.Label, k.Instance, kind)
}

func (k ProductKey) normalized() ProductKey {
	return ProductKey{
		Process:  ir.NormalizeName(k.Process),
		Label:    ir.NormalizeName(k.Label),
		Instance: ir.NormalizeName(k.Instance),
	}
}

// ProductInfo describes one stored product.
type ProductInfo struct {
	Seq   int64          `json:"seq"`
	ID    ir.ProductID   `json:"id"`
	Key   ProductKey     `json:"key"`
	Kind  ir.ProductKind `json:"kind"`
	Token string         `json:"process_token"`
	Size  int            `json:"size"`
}

// Tag returns the fully qualified input tag of the product.
func (p ProductInfo) Tag() ir.InputTag {
	return ir.InputTag{Label: p.Key.Label, Instance: p.Key.Instance, Process: p.Key.Process}
}

// EventRow is one event with the number of products it holds.
type EventRow struct {
	ID       ir.EventID `json:"id"`
	Products int        `json:"products"`
}
