package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hitkit/internal/fixture"
	"github.com/roach88/hitkit/internal/geometry"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	*RootOptions
	GeometryPath string
}

// ValidateResult is the JSON payload of a successful validation.
type ValidateResult struct {
	Valid    bool     `json:"valid"`
	Geometry string   `json:"geometry"`
	Channels int      `json:"channels"`
	Fixtures []string `json:"fixtures"`
	Events   int      `json:"events"`
}

func (r ValidateResult) String() string {
	return fmt.Sprintf("✓ geometry %s (%d channels), %d fixture(s), %d event(s)",
		r.Geometry, r.Channels, len(r.Fixtures), r.Events)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [fixture.yaml...]",
		Short: "Validate a detector description and fixtures",
		Long: `Check a CUE detector description and any number of fixture files
without writing anything. Every channel a fixture references must exist in
the detector.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.GeometryPath, "geometry", "", "path to CUE detector description (required)")
	_ = cmd.MarkFlagRequired("geometry")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, paths []string) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	geo, err := geometry.LoadFile(opts.GeometryPath)
	if err != nil {
		return out.Fail(ExitFailure, "invalid geometry", err)
	}
	out.VerboseLog("geometry %s: %d channels", geo.Name(), geo.NChannels())

	result := ValidateResult{
		Valid:    true,
		Geometry: geo.Name(),
		Channels: geo.NChannels(),
		Fixtures: []string{},
	}
	for _, path := range paths {
		f, err := fixture.LoadFile(path)
		if err != nil {
			return failFixture(out, path, err)
		}
		if err := checkChannels(geo, f); err != nil {
			return out.Fail(ExitFailure, fmt.Sprintf("fixture %s", path), err)
		}
		result.Fixtures = append(result.Fixtures, path)
		result.Events += len(f.Events)
		out.VerboseLog("fixture %s: %d events", path, len(f.Events))
	}

	return out.Success(result)
}

// failFixture reports a fixture error, listing each field problem on its
// own line in text mode.
func failFixture(out *OutputFormatter, path string, err error) error {
	var verrs fixture.ValidationErrors
	if out.Format == "json" || !errors.As(err, &verrs) {
		return out.Fail(ExitFailure, fmt.Sprintf("fixture %s", path), err)
	}
	lines := make([]string, len(verrs))
	for i, v := range verrs {
		lines[i] = "  " + v.Error()
	}
	if outErr := out.Error(ErrCodeInvalidFixture,
		fmt.Sprintf("fixture %s: %d problem(s)\n%s", path, len(verrs), strings.Join(lines, "\n")), nil); outErr != nil {
		return outErr
	}
	exitErr := WrapExitError(ExitFailure, fmt.Sprintf("fixture %s", path), err)
	exitErr.reported = true
	return exitErr
}

// checkChannels resolves every channel a fixture mentions.
func checkChannels(geo geometry.Lookup, f *fixture.File) error {
	for _, ev := range f.Events {
		for _, ch := range ev.Channels() {
			if _, err := geo.Resolve(ch); err != nil {
				return fmt.Errorf("event %s: %w", ev.ID(), err)
			}
		}
	}
	return nil
}
