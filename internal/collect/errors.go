package collect

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Error is a failure of collection bookkeeping that must stop processing
// of the current unit.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Output is the instance name involved, if any.
	Output string

	// Channels lists the channels involved (ambiguous refinement).
	Channels []uint32
}

// ErrorCode categorizes collection errors.
type ErrorCode string

const (
	// ErrCodeAmbiguousRefinement: old hits on one channel relate to different targets.
	ErrCodeAmbiguousRefinement ErrorCode = "AMBIGUOUS_REFINEMENT"

	// ErrCodeUndeclaredOutput: commit into an instance that was never declared.
	ErrCodeUndeclaredOutput ErrorCode = "UNDECLARED_OUTPUT"

	// ErrCodeDuplicateOutput: the same instance declared twice.
	ErrCodeDuplicateOutput ErrorCode = "DUPLICATE_OUTPUT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Output != "" {
		msg += fmt.Sprintf(" (output=%q)", e.Output)
	}
	if len(e.Channels) > 0 {
		msg += fmt.Sprintf(" channels=%v", e.Channels)
	}
	return msg
}

// NewUndeclaredError is returned by sinks asked to commit an unknown instance.
func NewUndeclaredError(output string) *Error {
	return &Error{
		Code:    ErrCodeUndeclaredOutput,
		Message: "output was not declared before commit",
		Output:  output,
	}
}

// NewDuplicateError is returned by declarers asked to declare an instance twice.
func NewDuplicateError(output string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateOutput,
		Message: "output declared more than once",
		Output:  output,
	}
}

func newAmbiguousError(output string, kind string, channels *roaring.Bitmap) *Error {
	return &Error{
		Code:     ErrCodeAmbiguousRefinement,
		Message:  fmt.Sprintf("hits on the same channel relate to different %s targets", kind),
		Output:   output,
		Channels: channels.ToArray(),
	}
}

// IsAmbiguousRefinement reports whether err is an ambiguous refinement.
// Uses errors.As to handle wrapped errors.
func IsAmbiguousRefinement(err error) bool {
	return hasCode(err, ErrCodeAmbiguousRefinement)
}

// IsUndeclaredOutput reports whether err is a commit into an undeclared output.
func IsUndeclaredOutput(err error) bool {
	return hasCode(err, ErrCodeUndeclaredOutput)
}

// IsDuplicateOutput reports whether err is a repeated declaration.
func IsDuplicateOutput(err error) bool {
	return hasCode(err, ErrCodeDuplicateOutput)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
