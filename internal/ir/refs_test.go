package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPtr_Valid(t *testing.T) {
	tests := []struct {
		name string
		ptr  Ptr
		want bool
	}{
		{"zero", Ptr{}, false},
		{"no product", Ptr{Key: 3}, false},
		{"negative key", Ptr{Product: "p", Key: -1}, false},
		{"first element", Ptr{Product: "p", Key: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ptr.Valid())
		})
	}
}

func TestRelations_Target(t *testing.T) {
	rel := Relations{{Product: "w", Key: 2}, {}, {Product: "w", Key: -4}}

	p, ok := rel.Target(0)
	assert.True(t, ok)
	assert.Equal(t, Ptr{Product: "w", Key: 2}, p)

	_, ok = rel.Target(1)
	assert.False(t, ok)
	_, ok = rel.Target(2)
	assert.False(t, ok, "malformed pointer reads as absent")
	_, ok = rel.Target(3)
	assert.False(t, ok)

	assert.Equal(t, 1, rel.Present())
}

func TestCollection_Ptr(t *testing.T) {
	c := Collection[Wire]{Product: "wires", Items: make([]Wire, 2)}

	assert.Equal(t, Ptr{Product: "wires", Key: 1}, c.Ptr(1))
	assert.False(t, c.Ptr(2).Valid())
	assert.False(t, c.Ptr(-1).Valid())
}

func TestPendingRef_Resolve(t *testing.T) {
	ref := PendingRef{Output: "refined", Index: 4}
	assert.Equal(t, Ptr{Product: "abc", Key: 4}, ref.Resolve("abc"))
}

func TestParseInputTag(t *testing.T) {
	tests := []struct {
		in      string
		want    InputTag
		wantErr bool
	}{
		{in: "", want: InputTag{}},
		{in: "caldata", want: InputTag{Label: "caldata"}},
		{in: "gaushit:refined", want: InputTag{Label: "gaushit", Instance: "refined"}},
		{in: "gaushit::reco", want: InputTag{Label: "gaushit", Process: "reco"}},
		{in: ":x", wantErr: true},
		{in: "a:b:c:d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInputTag(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !got.Empty() {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}
