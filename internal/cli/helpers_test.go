package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/testutil"
)

const toyGeometry = "testdata/toy.cue"

// execute runs a single command with fresh options and returns what it
// wrote to stdout.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, error) {
	t.Helper()

	opts := &RootOptions{
		Format: format,
		Tokens: testutil.NewFixedTokenGenerator("cli-test"),
	}
	cmd := newCmd(opts)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// loadBasic loads testdata/basic.yaml into a new database and returns its path.
func loadBasic(t *testing.T) string {
	t.Helper()
	return loadFixture(t, "testdata/basic.yaml")
}

func loadFixture(t *testing.T, fixtures ...string) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "hits.db")
	args := append([]string{"--db", dbPath, "--geometry", toyGeometry}, fixtures...)
	_, err := execute(t, NewLoadCommand, "text", args...)
	require.NoError(t, err)
	return dbPath
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
