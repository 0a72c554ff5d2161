package geometry

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// schemaCUE constrains detector descriptions before they are decoded.
const schemaCUE = `
#Plane: {
	cryostat:      int & >=0 | *0
	tpc:           int & >=0 | *0
	plane:         int & >=0
	view:          "U" | "V" | "Z" | "Y" | "X"
	signal:        "induction" | "collection"
	first_channel: int & >=0 & <4294967295
	wires:         int & >0 & <=65536 & <=(4294967295 - first_channel)
}

detector: {
	name:   string & !=""
	planes: [#Plane, ...#Plane]
}
`

// LoadError reports a problem in a detector description, with the CUE
// source position when one is known.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads a CUE detector description from path and builds a ChannelMap.
func LoadFile(path string) (*ChannelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geometry: %w", err)
	}
	return Load(data, path)
}

// Load compiles a CUE detector description. filename is only used in
// error positions.
func Load(src []byte, filename string) (*ChannelMap, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	detector := schema.Unify(v).LookupPath(cue.ParsePath("detector"))
	if !detector.Exists() {
		return nil, &LoadError{Field: "detector", Message: "detector is required", Pos: v.Pos()}
	}
	if err := detector.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var desc Description
	if err := detector.Decode(&desc); err != nil {
		return nil, formatCUEError(err)
	}

	m, err := NewChannelMap(desc)
	if err != nil {
		return nil, &LoadError{Field: "detector", Message: err.Error(), Pos: detector.Pos()}
	}
	return m, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
