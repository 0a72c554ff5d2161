package collect

import (
	"context"
	"fmt"

	"github.com/roach88/hitkit/internal/ir"
)

// memSink records every commit it receives.
type memSink struct {
	declared map[string]Output
	commits  []sinkCommit
	fail     error
}

type sinkCommit struct {
	out    Output
	hits   []ir.Hit
	wires  ir.Relations
	digits ir.Relations
}

func newMemSink() *memSink {
	return &memSink{declared: map[string]Output{}}
}

func (m *memSink) DeclareOutput(instance string, wireAssns, digitAssns bool) error {
	if _, ok := m.declared[instance]; ok {
		return NewDuplicateError(instance)
	}
	m.declared[instance] = Output{Instance: instance, WireAssns: wireAssns, DigitAssns: digitAssns}
	return nil
}

func (m *memSink) Commit(_ context.Context, out Output, hits []ir.Hit, wires, digits ir.Relations) error {
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.declared[out.Instance]; !ok {
		return NewUndeclaredError(out.Instance)
	}
	m.commits = append(m.commits, sinkCommit{out: out, hits: hits, wires: wires, digits: digits})
	return nil
}

func (m *memSink) last() sinkCommit {
	return m.commits[len(m.commits)-1]
}

// memSource serves collections keyed by tag label.
type memSource struct {
	wires     map[string]ir.Collection[ir.Wire]
	digits    map[string]ir.Collection[ir.RawDigit]
	hits      map[string]ir.Collection[ir.Hit]
	relations map[string]map[ir.RelationKind]ir.Relations
	calls     []string
}

func newMemSource() *memSource {
	return &memSource{
		wires:     map[string]ir.Collection[ir.Wire]{},
		digits:    map[string]ir.Collection[ir.RawDigit]{},
		hits:      map[string]ir.Collection[ir.Hit]{},
		relations: map[string]map[ir.RelationKind]ir.Relations{},
	}
}

func (m *memSource) Wires(_ context.Context, tag ir.InputTag) (ir.Collection[ir.Wire], error) {
	m.calls = append(m.calls, "wires:"+tag.String())
	c, ok := m.wires[tag.Label]
	if !ok {
		return c, fmt.Errorf("no wires %s", tag)
	}
	return c, nil
}

func (m *memSource) RawDigits(_ context.Context, tag ir.InputTag) (ir.Collection[ir.RawDigit], error) {
	m.calls = append(m.calls, "rawdigits:"+tag.String())
	c, ok := m.digits[tag.Label]
	if !ok {
		return c, fmt.Errorf("no raw digits %s", tag)
	}
	return c, nil
}

func (m *memSource) Hits(_ context.Context, tag ir.InputTag) (ir.Collection[ir.Hit], error) {
	m.calls = append(m.calls, "hits:"+tag.String())
	c, ok := m.hits[tag.Label]
	if !ok {
		return c, fmt.Errorf("no hits %s", tag)
	}
	return c, nil
}

func (m *memSource) Relations(_ context.Context, tag ir.InputTag, kind ir.RelationKind) (ir.Relations, error) {
	m.calls = append(m.calls, string(kind)+":"+tag.String())
	return m.relations[tag.Label][kind], nil
}

func (m *memSource) setRelations(label string, kind ir.RelationKind, rel ir.Relations) {
	if m.relations[label] == nil {
		m.relations[label] = map[ir.RelationKind]ir.Relations{}
	}
	m.relations[label][kind] = rel
}

func hitOn(ch ir.ChannelID, peak float32) ir.Hit {
	return ir.Hit{Channel: ch, StartTick: 10, EndTick: 20, PeakTime: peak}
}

func ptr(product string, key int) ir.Ptr {
	return ir.Ptr{Product: ir.ProductID(product), Key: key}
}

func tag(label string) ir.InputTag {
	return ir.InputTag{Label: label}
}
