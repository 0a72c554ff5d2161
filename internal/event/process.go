package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
)

// ErrDeclarationsClosed is returned when a module declares an output after
// the process opened its first event.
var ErrDeclarationsClosed = errors.New("declarations closed: an event was already opened")

// Store is the persistence a process writes to and reads from.
// *store.Store implements it.
type Store interface {
	WriteHits(ctx context.Context, ev ir.EventID, token string, key store.ProductKey, hits []ir.Hit, wires, digits ir.Relations) error
	WriteWires(ctx context.Context, ev ir.EventID, token string, key store.ProductKey, wires []ir.Wire, digits ir.Relations) error
	WriteRawDigits(ctx context.Context, ev ir.EventID, token string, key store.ProductKey, digits []ir.RawDigit) error

	ReadHits(ctx context.Context, ev ir.EventID, tag ir.InputTag) (ir.Collection[ir.Hit], error)
	ReadWires(ctx context.Context, ev ir.EventID, tag ir.InputTag) (ir.Collection[ir.Wire], error)
	ReadRawDigits(ctx context.Context, ev ir.EventID, tag ir.InputTag) (ir.Collection[ir.RawDigit], error)
	ReadRelations(ctx context.Context, ev ir.EventID, tag ir.InputTag, kind ir.RelationKind) (ir.Relations, error)
}

// Process is one run of a program over a store.
//
// Thread-safety: a Process and everything it hands out belong to one
// goroutine.
type Process struct {
	name    string
	token   string
	store   Store
	modules map[string]*Module
	started bool
}

// NewProcess creates a process named name writing to st. gen supplies the
// process token; nil uses UUIDv7Generator.
func NewProcess(name string, st Store, gen TokenGenerator) (*Process, error) {
	name = ir.NormalizeName(name)
	if name == "" {
		return nil, errors.New("new process: name is required")
	}
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	p := &Process{
		name:    name,
		token:   gen.Generate(),
		store:   st,
		modules: make(map[string]*Module),
	}
	slog.Debug("process started", "process", p.name, "token", p.token)
	return p, nil
}

// Name returns the process name that qualifies every product it writes.
func (p *Process) Name() string { return p.name }

// Token returns the unique token of this run.
func (p *Process) Token() string { return p.token }

// Module registers a producer under label. Labels are unique per process.
func (p *Process) Module(label string) (*Module, error) {
	label = ir.NormalizeName(label)
	if label == "" {
		return nil, errors.New("register module: label is required")
	}
	if _, ok := p.modules[label]; ok {
		return nil, fmt.Errorf("register module %q: label already used", label)
	}
	if p.started {
		return nil, fmt.Errorf("register module %q: %w", label, ErrDeclarationsClosed)
	}
	m := &Module{
		proc:     p,
		label:    label,
		declared: make(map[outputKey]declaration),
	}
	p.modules[label] = m
	return m, nil
}
