package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"

	"github.com/nerrad567/diskmon/internal/infrastructure/config"
)

// Kind identifies a device type.
type Kind string

// Supported device kinds. Values match the config file's device type.
const (
	KindSata   Kind = config.DeviceTypeSata
	KindMdRaid Kind = config.DeviceTypeMdRaid
)

// ParseKind converts a config device type into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSata, KindMdRaid:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// DeviceSpec identifies one monitored device.
type DeviceSpec struct {
	// Name is the display label shown in Home Assistant.
	Name string

	// ID is the stable identifier used in topics and as the unique entity
	// key, e.g. "sda" or "md0".
	ID string

	Kind Kind
}

// SpecsFromConfig converts validated device entries into DeviceSpecs,
// preserving order.
func SpecsFromConfig(devices []config.DeviceConfig) ([]DeviceSpec, error) {
	specs := make([]DeviceSpec, 0, len(devices))
	for i, d := range devices {
		kind, err := ParseKind(d.Type)
		if err != nil {
			return nil, fmt.Errorf("devices[%d]: %w", i, err)
		}
		specs = append(specs, DeviceSpec{Name: d.Name, ID: d.Device, Kind: kind})
	}
	return specs, nil
}

// HealthReport is the normalised outcome of polling one device.
type HealthReport struct {
	State      string
	Attributes any
}

// AttributesJSON marshals Attributes and checks the result is a JSON object.
func (r HealthReport) AttributesJSON() ([]byte, error) {
	data, err := json.Marshal(r.Attributes)
	if err != nil {
		return nil, fmt.Errorf("marshalling attributes: %w", err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("attributes must marshal to a JSON object, got %s", data)
	}
	return data, nil
}

// validState reports whether s can be published as a raw state payload.
func validState(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
