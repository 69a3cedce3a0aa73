package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/nerrad567/diskmon/internal/process"
)

// SATA health states.
const (
	StateHealthy    = "Healthy"
	StateNotHealthy = "Not healthy"
)

// smartctlField names the failing field for tool-level errors.
const smartctlField = "smartctl"

// SmartQuerier runs a SMART query against a device path and hands the JSON
// report to consume before the tool is reaped.
type SmartQuerier interface {
	QuerySmart(ctx context.Context, devicePath string, consume func(io.Reader) error) error
}

// SmartReport is the subset of smartctl's JSON output published as device
// attributes.
type SmartReport struct {
	SerialNumber    string        `json:"serial_number"`
	SmartStatus     SmartStatus   `json:"smart_status"`
	ModelFamily     string        `json:"model_family"`
	ModelName       string        `json:"model_name"`
	Temperature     Temperature   `json:"temperature"`
	FirmwareVersion string        `json:"firmware_version,omitempty"`
	UserCapacity    *UserCapacity `json:"user_capacity,omitempty"`
	PowerOnTime     *PowerOnTime  `json:"power_on_time,omitempty"`

	// Capacity is UserCapacity rendered for humans, e.g. "4.0 TB".
	Capacity string `json:"capacity,omitempty"`
}

// SmartStatus is smartctl's overall health self-assessment.
type SmartStatus struct {
	Passed bool `json:"passed"`
}

// Temperature is the current drive temperature in °C.
type Temperature struct {
	Current int `json:"current"`
}

// UserCapacity is the drive's user-addressable size.
type UserCapacity struct {
	Bytes uint64 `json:"bytes"`
}

// PowerOnTime is the drive's accumulated powered-on time.
type PowerOnTime struct {
	Hours int64 `json:"hours"`
}

// rawSmartReport mirrors SmartReport with pointers so that absent required
// fields can be told apart from zero values.
type rawSmartReport struct {
	SerialNumber *string `json:"serial_number"`
	SmartStatus  *struct {
		Passed *bool `json:"passed"`
	} `json:"smart_status"`
	ModelFamily *string `json:"model_family"`
	ModelName   *string `json:"model_name"`
	Temperature *struct {
		Current *int `json:"current"`
	} `json:"temperature"`
	FirmwareVersion *string       `json:"firmware_version"`
	UserCapacity    *UserCapacity `json:"user_capacity"`
	PowerOnTime     *PowerOnTime  `json:"power_on_time"`
}

// SataMonitor reports SATA disk health from SMART data.
type SataMonitor struct {
	querier SmartQuerier
	logger  Logger
}

// NewSataMonitor creates a SATA monitor using querier.
func NewSataMonitor(querier SmartQuerier) *SataMonitor {
	return &SataMonitor{querier: querier, logger: noopLogger{}}
}

// SetLogger sets the logger used for advisory warnings.
func (m *SataMonitor) SetLogger(logger Logger) {
	m.logger = logger
}

// Poll queries /dev/<deviceID> and derives the health state from the SMART
// self-assessment.
func (m *SataMonitor) Poll(ctx context.Context, deviceID string) (HealthReport, error) {
	var report SmartReport
	err := m.querier.QuerySmart(ctx, "/dev/"+deviceID, func(r io.Reader) error {
		var decodeErr error
		report, decodeErr = DecodeSmartReport(r)
		return decodeErr
	})

	var waitErr *process.WaitError
	switch {
	case err == nil:
	case errors.As(err, &waitErr):
		// The report was fully parsed; smartctl's exit status is a bitmask
		// of disk conditions and does not invalidate it.
		m.logger.Warn("smartctl exited with error after report was read",
			"device", deviceID,
			"exit_code", waitErr.ExitCode(),
			"error", err,
		)
	case errors.Is(err, ErrMalformedOutput):
		return HealthReport{}, newPollError(deviceID, smartctlField, ErrMalformedOutput, err)
	default:
		return HealthReport{}, newPollError(deviceID, smartctlField, ErrToolUnavailable, err)
	}

	state := StateNotHealthy
	if report.SmartStatus.Passed {
		state = StateHealthy
	}
	return HealthReport{State: state, Attributes: report}, nil
}

// DecodeSmartReport parses one smartctl JSON document. Errors wrap
// ErrMalformedOutput.
func DecodeSmartReport(r io.Reader) (SmartReport, error) {
	var raw rawSmartReport
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return SmartReport{}, fmt.Errorf("%w: decoding smartctl JSON: %w", ErrMalformedOutput, err)
	}

	switch {
	case raw.SerialNumber == nil:
		return SmartReport{}, missingField("serial_number")
	case raw.SmartStatus == nil || raw.SmartStatus.Passed == nil:
		return SmartReport{}, missingField("smart_status.passed")
	case raw.ModelFamily == nil:
		return SmartReport{}, missingField("model_family")
	case raw.ModelName == nil:
		return SmartReport{}, missingField("model_name")
	case raw.Temperature == nil || raw.Temperature.Current == nil:
		return SmartReport{}, missingField("temperature.current")
	}
	if *raw.Temperature.Current < 0 {
		return SmartReport{}, fmt.Errorf("%w: negative temperature %d", ErrMalformedOutput, *raw.Temperature.Current)
	}

	report := SmartReport{
		SerialNumber: *raw.SerialNumber,
		SmartStatus:  SmartStatus{Passed: *raw.SmartStatus.Passed},
		ModelFamily:  *raw.ModelFamily,
		ModelName:    *raw.ModelName,
		Temperature:  Temperature{Current: *raw.Temperature.Current},
		UserCapacity: raw.UserCapacity,
		PowerOnTime:  raw.PowerOnTime,
	}
	if raw.FirmwareVersion != nil {
		report.FirmwareVersion = *raw.FirmwareVersion
	}
	if raw.UserCapacity != nil && raw.UserCapacity.Bytes > 0 {
		report.Capacity = humanize.Bytes(raw.UserCapacity.Bytes)
	}
	return report, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing required field %s", ErrMalformedOutput, name)
}
