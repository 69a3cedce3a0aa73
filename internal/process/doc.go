// Package process runs short-lived external tools and streams their output.
//
// It is used for diagnostics utilities such as smartctl that print one
// report on stdout and exit. The caller consumes stdout while the child is
// still running; the child is reaped only after the consumer returns, so a
// non-zero exit that follows a complete, valid report is reported separately
// as a *WaitError instead of discarding the output.
//
// Features:
//   - Launch failures wrapped with ErrStart
//   - Optional per-invocation timeout (ErrTimeout), killing the process group
//   - Bounded stderr capture attached to WaitError
//   - Remaining stdout drained before reaping so the child never blocks
//
// Example usage:
//
//	r := process.NewRunner()
//	err := r.Run(ctx, process.Command{
//	    Name:   "smartctl",
//	    Binary: "smartctl",
//	    Args:   []string{"-iaj", "--nocheck", "standby", "/dev/sda"},
//	}, func(stdout io.Reader) error {
//	    return json.NewDecoder(stdout).Decode(&report)
//	})
//
//	var waitErr *process.WaitError
//	if errors.As(err, &waitErr) {
//	    // report is valid; the exit status is advisory
//	}
package process
