package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/ir"
)

func TestFixedTokenGenerator(t *testing.T) {
	gen := NewFixedTokenGenerator("proc-1")
	assert.Equal(t, "proc-1", gen.Generate())
	assert.Equal(t, "proc-1", gen.Generate())

	assert.Equal(t, "test-process-default", NewFixedTokenGenerator("").Generate())
}

func TestToyGeometry(t *testing.T) {
	info, err := ToyGeometry().Resolve(25)
	require.NoError(t, err)
	assert.Equal(t, ir.ViewZ, info.View)
}

func TestMapGeometry(t *testing.T) {
	g := MapGeometry{7: {View: ir.ViewV}}

	info, err := g.Resolve(7)
	require.NoError(t, err)
	assert.Equal(t, ir.ViewV, info.View)

	_, err = g.Resolve(8)
	assert.ErrorIs(t, err, geometry.ErrUnknownChannel)
}
