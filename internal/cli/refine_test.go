package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/ir"
)

func TestRefineInheritsRelations(t *testing.T) {
	dbPath := loadBasic(t)

	out, err := execute(t, NewRefineCommand, "text",
		"--db", dbPath, "--from", "gaushit", "--min-amplitude", "1", "--label", "hitfilter")
	require.NoError(t, err)
	assert.Equal(t, "hitfilter::refine: 1 hits in 2 event(s), 1 wire relations, 1 raw digit relations\n", out)

	out, err = execute(t, NewDumpCommand, "text", "--db", dbPath, "--event", "1:0:1", "hitfilter")
	require.NoError(t, err)
	assert.Equal(t, "event 1:0:1: hits hitfilter::refine (1)\n"+
		"[0] ch=22 C:0 T:0 P:2 W:2 Z ticks=[1,4) peak=2 amp=31 integral=0 summed=48 wire=caldata::load[0] digit=daq::load[0]\n", out)
}

func TestRefineFillsRelationsByChannel(t *testing.T) {
	dbPath := loadBasic(t)

	out, err := execute(t, NewRefineCommand, "text",
		"--db", dbPath, "--from", "gaushit:", "--label", "hitfilter")
	require.NoError(t, err)
	// The raw digit hit on channel 3 picks up the wire of its channel.
	assert.Equal(t, "hitfilter::refine: 6 hits in 2 event(s), 6 wire relations, 5 raw digit relations\n", out)
}

func TestRefineAmbiguousChannel(t *testing.T) {
	dbPath := loadFixture(t, "testdata/shared_channel.yaml")

	out, err := execute(t, NewRefineCommand, "json",
		"--db", dbPath, "--from", "gaushit", "--no-digit-assns", "--label", "hitfilter")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Channels []uint32
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeAmbiguous, resp.Error.Code)
	assert.Equal(t, []uint32{22}, resp.Error.Details.Channels)

	// Nothing was written for the failed event.
	out, err = execute(t, NewDumpCommand, "text", "--db", dbPath, "--event", "2:0:7")
	require.NoError(t, err)
	assert.NotContains(t, out, "hitfilter")
}

func TestRefineWithoutRelations(t *testing.T) {
	dbPath := loadFixture(t, "testdata/shared_channel.yaml")

	out, err := execute(t, NewRefineCommand, "text",
		"--db", dbPath, "--from", "gaushit", "--no-wire-assns", "--no-digit-assns", "--label", "hitfilter")
	require.NoError(t, err)
	assert.Equal(t, "hitfilter::refine: 2 hits in 1 event(s), 0 wire relations, 0 raw digit relations\n", out)
}

func TestRefineMissingRelationTable(t *testing.T) {
	dbPath := loadFixture(t, "testdata/shared_channel.yaml")

	// The fixture stores no hit→raw digit relations.
	out, err := execute(t, NewRefineCommand, "text",
		"--db", dbPath, "--from", "gaushit", "--label", "hitfilter")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestRefineSeparateHitSource(t *testing.T) {
	dbPath := loadBasic(t)

	_, err := execute(t, NewRefineCommand, "text",
		"--db", dbPath, "--event", "1:0:1", "--from", "gaushit", "--min-amplitude", "1", "--label", "strong")
	require.NoError(t, err)

	// Refine the strong hits again, still inheriting from the full collection.
	out, err := execute(t, NewRefineCommand, "text",
		"--db", dbPath, "--event", "1:0:1", "--from", "gaushit", "--hits", "strong",
		"--no-digit-assns", "--label", "again", "--process", "second")
	require.NoError(t, err)
	assert.Equal(t, "again::second: 1 hits in 1 event(s), 1 wire relations, 0 raw digit relations\n", out)
}

func TestSelectHits(t *testing.T) {
	from := []ir.Hit{
		{Channel: 1, PeakAmplitude: 5},
		{Channel: 2, PeakAmplitude: 0.5},
		{Channel: 3, PeakAmplitude: 1},
	}

	hits, err := selectHits(from, 1)
	require.NoError(t, err)
	assert.Equal(t, []ir.Hit{from[0], from[2]}, hits)

	hits, err = selectHits(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
