package process

import (
	"errors"
	"fmt"
)

var (
	// ErrStart is returned when the binary cannot be launched.
	ErrStart = errors.New("process: failed to start")

	// ErrTimeout is returned when the command's timeout expired before its
	// output could be consumed.
	ErrTimeout = errors.New("process: timed out")
)

// WaitError reports a failure observed when reaping a process whose output
// was consumed successfully. Callers may treat it as advisory.
type WaitError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *WaitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process %s: wait: %v (stderr: %s)", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("process %s: wait: %v", e.Name, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code, or -1 when the process did not
// exit normally (for example it was killed by a signal).
func (e *WaitError) ExitCode() int {
	var exitErr interface{ ExitCode() int }
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
