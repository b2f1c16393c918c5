package clgen

import (
	"errors"
	"fmt"
)

// VocabError is raised when atomize/deatomize encounters an atom or index
// that is not present in the vocabulary.
type VocabError struct {
	Atom  string
	Index int
	// HasIndex distinguishes an unknown-index error (deatomize) from an
	// unknown-atom error (atomize/tokenize); only one of Atom/Index applies.
	HasIndex bool
}

func (e VocabError) Error() string {
	if e.HasIndex {
		return fmt.Sprintf("vocab error: unknown index %d", e.Index)
	}
	return fmt.Sprintf("vocab error: unknown atom %q", e.Atom)
}

// KernelDriverError is the family of errors raised while compiling,
// running or classifying a kernel. Every kind shares this one type and
// Kind names the precise kind (e.g. "E_NO_OUTPUTS"); the family a kind
// belongs to (e.g. E_NO_OUTPUTS within E_UGLY_CODE) is not recorded.
type KernelDriverError struct {
	Kind string
	Err  error
}

func (e *KernelDriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return e.Kind
}

func (e *KernelDriverError) Unwrap() error { return e.Err }

func newDriverError(kind string, err error) *KernelDriverError {
	return &KernelDriverError{Kind: kind, Err: err}
}

// ErrBadCode reports that a kernel failed to compile.
func ErrBadCode(err error) error { return newDriverError("E_BAD_CODE", err) }

// ErrUglyCode reports that a program did not expose exactly one kernel.
func ErrUglyCode(err error) error { return newDriverError("E_UGLY_CODE", err) }

// ErrInputInsensitive reports that a kernel's outputs did not depend on its
// non-const inputs.
func ErrInputInsensitive() error { return newDriverError("E_INPUT_INSENSITIVE", nil) }

// ErrNoOutputs reports that a kernel produced no observable output.
func ErrNoOutputs() error { return newDriverError("E_NO_OUTPUTS", nil) }

// ErrNondeterministic reports that repeated runs on identical input produced
// different output.
func ErrNondeterministic() error { return newDriverError("E_NONDETERMINISTIC", nil) }

// ErrBadDriver reports a harness-level failure unrelated to kernel source,
// such as being unable to synthesize the validator's input payloads.
func ErrBadDriver(err error) error { return newDriverError("E_BAD_DRIVER", err) }

// ErrBadArgs reports that payload synthesis or argument binding failed.
func ErrBadArgs(err error) error { return newDriverError("E_BAD_ARGS", err) }

// ErrBadProfile reports that the profiling API failed to report event
// timings.
func ErrBadProfile(err error) error { return newDriverError("E_BAD_PROFILE", err) }

// ErrNonTerminating marks a kernel that hung the caller; it is never raised
// directly by this package (there is no cancellation here, see §5) but is
// reserved for a wrapping harness that imposes an external timeout.
func ErrNonTerminating() error { return newDriverError("E_NON_TERMINATING", nil) }

// ErrOpenCLNotSupported reports that the host environment cannot support a
// compute device at all.
func ErrOpenCLNotSupported() error { return newDriverError("OpenCLNotSupported", nil) }

// ErrOpenCLDeviceNotFound reports that no device matched the requested type.
func ErrOpenCLDeviceNotFound(wanted string) error {
	return newDriverError("OpenCLDeviceNotFound", fmt.Errorf("no device of type %q", wanted))
}

// errKind returns the classification tag of err if it is (or wraps) a
// *KernelDriverError, and ok=false otherwise. Used by the profiler to emit
// "<ErrorKind>,<kernel_name>" metadata lines.
func errKind(err error) (string, bool) {
	var de *KernelDriverError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
