package process

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func readAll(dst *string) Consumer {
	return func(r io.Reader) error {
		b, err := io.ReadAll(r)
		*dst = string(b)
		return err
	}
}

func TestRun_Success(t *testing.T) {
	var out string
	err := NewRunner().Run(context.Background(), Command{
		Name:   "echo",
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo hello"},
	}, readAll(&out))

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "hello\n" {
		t.Errorf("stdout = %q, want %q", out, "hello\n")
	}
}

func TestRun_NonZeroExitAfterOutput(t *testing.T) {
	var out string
	err := NewRunner().Run(context.Background(), Command{
		Name:   "exit3",
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo '{\"ok\":true}'; echo warning >&2; exit 3"},
	}, readAll(&out))

	// Output is still delivered before the reap failure is reported
	if out != "{\"ok\":true}\n" {
		t.Errorf("stdout = %q, want JSON document", out)
	}

	var waitErr *WaitError
	if !errors.As(err, &waitErr) {
		t.Fatalf("Run() error = %v, want *WaitError", err)
	}
	if waitErr.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", waitErr.ExitCode())
	}
	if waitErr.Stderr != "warning" {
		t.Errorf("Stderr = %q, want %q", waitErr.Stderr, "warning")
	}
	if waitErr.Name != "exit3" {
		t.Errorf("Name = %q, want %q", waitErr.Name, "exit3")
	}
}

func TestRun_StartFailure(t *testing.T) {
	called := false
	err := NewRunner().Run(context.Background(), Command{
		Name:   "missing",
		Binary: "/nonexistent/binary",
	}, func(io.Reader) error {
		called = true
		return nil
	})

	if !errors.Is(err, ErrStart) {
		t.Fatalf("Run() error = %v, want ErrStart", err)
	}
	if called {
		t.Error("consumer called for a process that never started")
	}
}

func TestRun_ConsumerErrorTakesPriority(t *testing.T) {
	parseErr := errors.New("bad document")
	err := NewRunner().Run(context.Background(), Command{
		Name:   "garbage",
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo not-json; exit 1"},
	}, func(io.Reader) error {
		return parseErr
	})

	if !errors.Is(err, parseErr) {
		t.Fatalf("Run() error = %v, want consumer error", err)
	}
	var waitErr *WaitError
	if errors.As(err, &waitErr) {
		t.Error("Run() returned *WaitError, want consumer error")
	}
}

func TestRun_ConsumerMayStopEarly(t *testing.T) {
	// The consumer reads a single JSON value; trailing output is drained
	var v map[string]int
	err := NewRunner().Run(context.Background(), Command{
		Name:   "trailing",
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo '{\"a\":1}'; seq 1 20000"},
	}, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&v)
	})

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v["a"] != 1 {
		t.Errorf("decoded = %v, want a=1", v)
	}
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	err := NewRunner().Run(context.Background(), Command{
		Name:    "sleeper",
		Binary:  "/bin/sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	}, func(r io.Reader) error {
		var v any
		return json.NewDecoder(r).Decode(&v)
	})

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %v, want prompt kill", elapsed)
	}
}

func TestRun_Env(t *testing.T) {
	var out string
	err := NewRunner().Run(context.Background(), Command{
		Name:   "env",
		Binary: "/bin/sh",
		Args:   []string{"-c", "printf %s \"$DISKMON_TEST_VAR\""},
		Env:    []string{"DISKMON_TEST_VAR=present"},
	}, readAll(&out))

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "present" {
		t.Errorf("stdout = %q, want %q", out, "present")
	}
}

func TestWaitError_ExitCodeWithoutExit(t *testing.T) {
	e := &WaitError{Name: "x", Err: errors.New("signal: killed")}
	if got := e.ExitCode(); got != -1 {
		t.Errorf("ExitCode() = %d, want -1", got)
	}
	if !strings.Contains(e.Error(), "signal: killed") {
		t.Errorf("Error() = %q, want cause included", e.Error())
	}
}

func TestLimitedBuffer(t *testing.T) {
	b := &limitedBuffer{limit: 5}
	n, err := b.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	n, err = b.Write([]byte("defgh"))
	if n != 5 || err != nil {
		t.Fatalf("Write() = %d, %v; want full length reported", n, err)
	}
	if got := b.String(); got != "abcde" {
		t.Errorf("String() = %q, want %q", got, "abcde")
	}
}

func TestRunner_SetLogger(t *testing.T) {
	r := NewRunner()
	// Should not panic
	r.SetLogger(noopLogger{})
	if r.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger")
	}
}
