package ir

import (
	"fmt"
	"strings"
)

// ProductID is the content-addressed identity of one persisted collection.
// See ProductIDFor.
type ProductID string

// Ptr references one element of a persisted collection.
// The zero Ptr is the absent reference.
type Ptr struct {
	Product ProductID `json:"product,omitempty"`
	Key     int       `json:"key"`
}

// Valid reports whether p points somewhere. Malformed pointers
// (no product, negative key) are treated as absent.
func (p Ptr) Valid() bool { return p.Product != "" && p.Key >= 0 }

func (p Ptr) String() string {
	if !p.Valid() {
		return "<none>"
	}
	return fmt.Sprintf("%s[%d]", shortID(p.Product), p.Key)
}

func shortID(id ProductID) string {
	if len(id) > 12 {
		return string(id[:12])
	}
	return string(id)
}

// Relations is a relation table: entry i is the optional target of
// element i of the left collection.
type Relations []Ptr

// Target returns the target of element i, or false when absent or out of range.
func (r Relations) Target(i int) (Ptr, bool) {
	if i < 0 || i >= len(r) || !r[i].Valid() {
		return Ptr{}, false
	}
	return r[i], true
}

// Present counts the entries that hold a target.
func (r Relations) Present() int {
	n := 0
	for _, p := range r {
		if p.Valid() {
			n++
		}
	}
	return n
}

// Collection is a persisted collection as handed out by storage retrieval.
type Collection[T any] struct {
	Product ProductID
	Items   []T
}

// Len returns the number of items.
func (c Collection[T]) Len() int { return len(c.Items) }

// Ptr returns a pointer to item i.
func (c Collection[T]) Ptr(i int) Ptr {
	if i < 0 || i >= len(c.Items) {
		return Ptr{}
	}
	return Ptr{Product: c.Product, Key: i}
}

// PendingRef addresses a record of a collection that has not been committed
// yet. Only the sink turns it into a Ptr, once it knows the ProductID.
type PendingRef struct {
	Output string `json:"output"`
	Index  int    `json:"index"`
}

// Resolve binds the reference to the committed product.
func (r PendingRef) Resolve(product ProductID) Ptr {
	return Ptr{Product: product, Key: r.Index}
}

// RelationKind names a kind of relation table.
type RelationKind string

const (
	RelHitWire      RelationKind = "hit-wire"
	RelHitRawDigit  RelationKind = "hit-rawdigit"
	RelWireRawDigit RelationKind = "wire-rawdigit"
)

// Left returns the kind of the collection the relation table is aligned with.
func (k RelationKind) Left() ProductKind {
	if k == RelWireRawDigit {
		return KindWires
	}
	return KindHits
}

// ProductKind returns the product kind under which the relation is stored.
func (k RelationKind) ProductKind() ProductKind {
	return ProductKind("assns:" + string(k))
}

// ProductKind is the element type of a persisted collection.
type ProductKind string

const (
	KindHits      ProductKind = "hits"
	KindWires     ProductKind = "wires"
	KindRawDigits ProductKind = "rawdigits"
)

// InputTag selects a persisted collection by producer label, instance name
// and optionally process name. An empty Process selects the latest one.
type InputTag struct {
	Label    string `json:"label"`
	Instance string `json:"instance,omitempty"`
	Process  string `json:"process,omitempty"`
}

// Empty reports whether the tag is unset. An unset tag disables whatever
// it configures.
func (t InputTag) Empty() bool { return t.Label == "" }

// String formats the tag as label[:instance[:process]].
func (t InputTag) String() string {
	switch {
	case t.Process != "":
		return t.Label + ":" + t.Instance + ":" + t.Process
	case t.Instance != "":
		return t.Label + ":" + t.Instance
	default:
		return t.Label
	}
}

// ParseInputTag parses label[:instance[:process]].
func ParseInputTag(s string) (InputTag, error) {
	if s == "" {
		return InputTag{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return InputTag{}, fmt.Errorf("input tag %q: too many fields", s)
	}
	if parts[0] == "" {
		return InputTag{}, fmt.Errorf("input tag %q: label is required", s)
	}
	tag := InputTag{Label: parts[0]}
	if len(parts) > 1 {
		tag.Instance = parts[1]
	}
	if len(parts) > 2 {
		tag.Process = parts[2]
	}
	return tag, nil
}
