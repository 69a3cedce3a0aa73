package monitor

import (
	"errors"
	"fmt"
)

// Poll failure kinds. A *PollError matches exactly one of these with
// errors.Is.
var (
	// ErrToolUnavailable is returned when an external diagnostics tool
	// could not be launched or did not finish in time.
	ErrToolUnavailable = errors.New("monitor: tool unavailable")

	// ErrMalformedOutput is returned when a tool or status file produced
	// output that is not well-formed or lacks required fields.
	ErrMalformedOutput = errors.New("monitor: malformed output")

	// ErrSourceUnavailable is returned when a status file cannot be read.
	ErrSourceUnavailable = errors.New("monitor: source unavailable")

	// ErrUnknownKind is returned for a device kind with no monitor.
	ErrUnknownKind = errors.New("monitor: unknown device kind")
)

// PollError describes a failed poll of one device.
type PollError struct {
	DeviceID string

	// Field names the value that failed, e.g. "degraded" or "smartctl".
	Field string

	// Kind is one of the sentinel errors above.
	Kind error

	Err error
}

func (e *PollError) Error() string {
	msg := fmt.Sprintf("poll %s", e.DeviceID)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *PollError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newPollError(deviceID, field string, kind, err error) *PollError {
	return &PollError{DeviceID: deviceID, Field: field, Kind: kind, Err: err}
}
