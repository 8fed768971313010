// errors.go - Failure taxonomy for the resolution rewriter.
//
// Every failure aborts the whole operation and is reported to the caller;
// nothing is retried or silently recovered. Callers that need a numeric
// result (for logs or process exit status) can map any returned error
// through ExitCode.
package pngres

import "errors"

// A FormatError reports that the input is not a valid PNG chunk stream:
// the signature is missing or a chunk declares a length that would read
// past the end of the available input.
type FormatError string

func (e FormatError) Error() string { return "pngres: invalid format: " + string(e) }

// A CapacityError reports that the buffered rewriter's fixed capacity was
// exceeded, either by the input file or by the assembled output.
type CapacityError string

func (e CapacityError) Error() string { return "pngres: capacity exceeded: " + string(e) }

// A ReplaceError reports that a fully rewritten stream could not replace
// the destination, even via the delete-then-rename fallback. The finished
// output survives only at Temp.
type ReplaceError struct {
	Dest string
	Temp string
	Err  error
}

func (e *ReplaceError) Error() string {
	return "pngres: replace " + e.Dest + ": " + e.Err.Error() + " (output kept at " + e.Temp + ")"
}

func (e *ReplaceError) Unwrap() error { return e.Err }

// Numeric result codes, one per failure class. Any error outside the
// taxonomy above is an I/O failure.
const (
	CodeOK       = 0
	CodeIO       = 2
	CodeFormat   = 3
	CodeCapacity = 4
	CodeReplace  = 5
)

// ExitCode maps an error returned by this package to its numeric code.
func ExitCode(err error) int {
	var (
		formatErr   FormatError
		capacityErr CapacityError
		replaceErr  *ReplaceError
	)
	switch {
	case err == nil:
		return CodeOK
	case errors.As(err, &formatErr):
		return CodeFormat
	case errors.As(err, &capacityErr):
		return CodeCapacity
	case errors.As(err, &replaceErr):
		return CodeReplace
	default:
		return CodeIO
	}
}
