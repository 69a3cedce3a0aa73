// Package monitor polls storage devices and normalises their health.
//
// Each supported device type has a Monitor implementation:
//
//   - SataMonitor queries SMART data through smartctl's JSON output
//   - RaidMonitor reads Linux md array status from sysfs
//
// A Registry dispatches a DeviceSpec to the monitor for its Kind. The set
// of kinds is closed; adding one means adding a constant, a monitor and a
// case in Registry.For.
//
// # Health Reports
//
// Every successful poll yields a HealthReport: a short State string that is
// published verbatim (e.g. "Healthy", "Degraded", "idle") and an Attributes
// value that marshals to a JSON object.
//
// # Errors
//
// Failures are returned as *PollError. Its Kind is one of ErrToolUnavailable,
// ErrMalformedOutput or ErrSourceUnavailable, so callers can use errors.Is:
//
//	report, err := registry.Poll(ctx, spec)
//	if errors.Is(err, monitor.ErrSourceUnavailable) {
//	    // sysfs entry missing, e.g. array stopped
//	}
//
// A non-zero smartctl exit status observed after its report was parsed is
// logged and does not fail the poll; smartctl encodes disk conditions in its
// exit status that are unrelated to output validity.
package monitor
