package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// stderrLimit bounds the stderr captured for error reporting.
const stderrLimit = 4096

// waitDelay bounds how long Wait blocks on I/O after the process exits or
// is killed.
const waitDelay = 2 * time.Second

// Command describes one invocation of an external tool.
type Command struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Binary is the executable name or path, resolved via PATH.
	Binary string

	// Args are command-line arguments to pass to the binary.
	Args []string

	// Env are additional environment variables (key=value format).
	// If nil, inherits from parent process.
	Env []string

	// Timeout bounds the whole invocation. Zero means no timeout.
	Timeout time.Duration
}

// Consumer reads a command's stdout. It runs while the process is alive.
type Consumer func(stdout io.Reader) error

// Logger defines the logging interface for the runner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Runner executes one-shot commands. It is safe for concurrent use.
type Runner struct {
	mu     sync.RWMutex
	logger Logger
}

// NewRunner creates a runner with a no-op logger.
func NewRunner() *Runner {
	return &Runner{logger: noopLogger{}}
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(logger Logger) {
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

func (r *Runner) getLogger() Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// Run starts the command, hands its stdout to consume, then reaps it.
//
// Error precedence:
//  1. Launch failure: ErrStart
//  2. Consumer failure: ErrTimeout if the timeout expired, ctx's error if
//     ctx was cancelled, else the consumer's error unchanged
//  3. Reap failure (non-zero exit, signal): *WaitError
func (r *Runner) Run(ctx context.Context, c Command, consume Consumer) error {
	logger := r.getLogger()

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Binary, c.Args...) //nolint:gosec // Binary comes from validated configuration

	// Own process group so a timeout kills any helpers too
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
			return err
		}
		return nil
	}
	cmd.WaitDelay = waitDelay

	if c.Env != nil {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	stderr := &limitedBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: creating stdout pipe: %w", ErrStart, c.Name, err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStart, c.Name, err)
	}

	logger.Debug("process started",
		"name", c.Name,
		"pid", cmd.Process.Pid,
		"args", c.Args,
	)

	consumeErr := consume(stdout)

	// Drain whatever the consumer left so the child can exit
	if _, err := io.Copy(io.Discard, stdout); err != nil {
		logger.Debug("draining stdout", "name", c.Name, "error", err)
	}

	waitErr := cmd.Wait()

	logger.Debug("process exited",
		"name", c.Name,
		"duration", time.Since(started),
		"error", waitErr,
	)

	if consumeErr != nil {
		if c.Timeout > 0 && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %v", ErrTimeout, c.Name, c.Timeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("process %s: %w", c.Name, ctxErr)
		}
		return consumeErr
	}

	if waitErr != nil {
		return &WaitError{
			Name:   c.Name,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    waitErr,
		}
	}

	return nil
}

// limitedBuffer keeps the first limit bytes written and discards the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
