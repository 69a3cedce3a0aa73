package monitor

import (
	"context"
	"fmt"
)

// Monitor produces a HealthReport for one device identifier.
type Monitor interface {
	Poll(ctx context.Context, deviceID string) (HealthReport, error)
}

// Logger defines the logging interface for monitors.
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

// Registry maps each Kind to its Monitor.
type Registry struct {
	sata Monitor
	raid Monitor
}

// NewRegistry creates a registry. A nil monitor leaves that kind
// unsupported.
func NewRegistry(sata, raid Monitor) *Registry {
	return &Registry{sata: sata, raid: raid}
}

// For returns the monitor for kind.
func (r *Registry) For(kind Kind) (Monitor, error) {
	var m Monitor
	switch kind {
	case KindSata:
		m = r.sata
	case KindMdRaid:
		m = r.raid
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no monitor registered for %q", ErrUnknownKind, kind)
	}
	return m, nil
}

// Poll dispatches spec to the monitor for its kind.
func (r *Registry) Poll(ctx context.Context, spec DeviceSpec) (HealthReport, error) {
	m, err := r.For(spec.Kind)
	if err != nil {
		return HealthReport{}, err
	}
	return m.Poll(ctx, spec.ID)
}
