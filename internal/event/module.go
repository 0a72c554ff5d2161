package event

import (
	"fmt"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
)

type outputKey struct {
	kind     ir.ProductKind
	instance string
}

type declaration struct {
	wireAssns  bool
	digitAssns bool
}

// Module is a labeled producer of a process.
type Module struct {
	proc     *Process
	label    string
	declared map[outputKey]declaration
}

// Label returns the module label.
func (m *Module) Label() string { return m.label }

// Process returns the name of the process the module belongs to.
func (m *Module) Process() string { return m.proc.name }

// DeclareOutput declares a hit collection under instance together with the
// relation tables it carries. It implements collect.Declarer.
func (m *Module) DeclareOutput(instance string, wireAssns, digitAssns bool) error {
	return m.declare(ir.KindHits, instance, declaration{wireAssns: wireAssns, digitAssns: digitAssns})
}

// DeclareWires declares a wire collection under instance, optionally with
// its wire→raw digit relation table.
func (m *Module) DeclareWires(instance string, digitAssns bool) error {
	return m.declare(ir.KindWires, instance, declaration{digitAssns: digitAssns})
}

// DeclareRawDigits declares a raw digit collection under instance.
func (m *Module) DeclareRawDigits(instance string) error {
	return m.declare(ir.KindRawDigits, instance, declaration{})
}

func (m *Module) declare(kind ir.ProductKind, instance string, d declaration) error {
	key := outputKey{kind: kind, instance: ir.NormalizeName(instance)}
	if m.proc.started {
		return fmt.Errorf("declare %s %s: %w", kind, m.qualified(key.instance), ErrDeclarationsClosed)
	}
	if _, ok := m.declared[key]; ok {
		return collect.NewDuplicateError(m.qualified(key.instance))
	}
	m.declared[key] = d
	return nil
}

// lookup returns the declaration of an output, or an undeclared output error.
func (m *Module) lookup(kind ir.ProductKind, instance string) (outputKey, declaration, error) {
	key := outputKey{kind: kind, instance: ir.NormalizeName(instance)}
	d, ok := m.declared[key]
	if !ok {
		return key, declaration{}, collect.NewUndeclaredError(m.qualified(key.instance))
	}
	return key, d, nil
}

func (m *Module) qualified(instance string) string {
	if instance == "" {
		return m.label
	}
	return m.label + ":" + instance
}

func (m *Module) key(instance string) store.ProductKey {
	return store.ProductKey{Process: m.proc.name, Label: m.label, Instance: instance}
}

// Event opens processing unit id for this module. Opening any event closes
// declarations for the whole process.
func (m *Module) Event(id ir.EventID) *Event {
	m.proc.started = true
	return &Event{
		id:        id,
		mod:       m,
		committed: make(map[outputKey]bool),
	}
}
