package release

import (
	"errors"
	"fmt"
)

// Failure classes. Everything a pipeline step returns wraps exactly one
// of these, so callers branch with errors.Is instead of string matching.
var (
	ErrAuth             = errors.New("registry authentication failed")
	ErrBuild            = errors.New("image build failed")
	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidReference = errors.New("invalid image reference")
	ErrNetwork          = errors.New("registry unreachable")
	ErrRegistryRejected = errors.New("registry rejected push")
	ErrDescriptorIO     = errors.New("descriptor write failed")
)

// StepError names the pipeline step that failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// DegradedError marks a run where every push landed but the descriptor
// could not be written. The release is live in the registry, only the
// handoff file is missing, so the process exits 2 instead of 1.
type DegradedError struct {
	Err error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("release pushed but descriptor not written: %v", e.Err)
}

func (e *DegradedError) Unwrap() error {
	return e.Err
}

func (e *DegradedError) ExitCode() int {
	return 2
}
