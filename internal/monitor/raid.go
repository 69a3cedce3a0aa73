package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// StateDegraded is published for an array with failed or missing members,
// overriding the sync action.
const StateDegraded = "Degraded"

// DefaultSysfsRoot is the parent of the per-device md status directories.
const DefaultSysfsRoot = "/sys/class/block"

// md status files under <root>/<device>/md/, in read order.
const (
	fieldUUID          = "uuid"
	fieldSyncAction    = "sync_action"
	fieldSyncCompleted = "sync_completed"
	fieldDegraded      = "degraded"
)

// RaidAttributes are the attributes published for an md array.
type RaidAttributes struct {
	UUID         string `json:"uuid"`
	SyncAction   string `json:"sync_action"`
	SyncProgress string `json:"sync_progress"`
	DegradedBy   uint64 `json:"degraded_by"`
}

// RaidMonitor reports Linux md array status.
type RaidMonitor struct {
	reader SysfsReader
	root   string
}

// NewRaidMonitor creates a RAID monitor reading below root. An empty root
// means DefaultSysfsRoot.
func NewRaidMonitor(reader SysfsReader, root string) *RaidMonitor {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &RaidMonitor{reader: reader, root: root}
}

// Poll reads the array's status files. The state is "Degraded" when any
// member is missing, otherwise the current sync action ("idle", "resync",
// "recover", ...).
func (m *RaidMonitor) Poll(_ context.Context, deviceID string) (HealthReport, error) {
	var values [4]string
	for i, field := range []string{fieldUUID, fieldSyncAction, fieldSyncCompleted, fieldDegraded} {
		v, err := m.reader.ReadValue(filepath.Join(m.root, deviceID, "md", field))
		if err != nil {
			return HealthReport{}, newPollError(deviceID, field, ErrSourceUnavailable, err)
		}
		values[i] = v
	}
	uuid, syncAction, syncCompleted, degradedRaw := values[0], values[1], values[2], values[3]

	degraded, err := strconv.ParseUint(strings.TrimSpace(degradedRaw), 10, 64)
	if err != nil {
		return HealthReport{}, newPollError(deviceID, fieldDegraded, ErrMalformedOutput, err)
	}

	attrs := RaidAttributes{
		UUID:         strings.TrimSpace(uuid),
		SyncAction:   strings.TrimSpace(syncAction),
		SyncProgress: strings.TrimSpace(syncCompleted),
		DegradedBy:   degraded,
	}
	if pct, ok := ConvertPercent(syncCompleted); ok {
		attrs.SyncProgress = pct
	}

	state := StateDegraded
	if degraded == 0 {
		state = attrs.SyncAction
		if !validState(state) {
			return HealthReport{}, newPollError(deviceID, fieldSyncAction, ErrMalformedOutput,
				fmt.Errorf("unusable sync_action %q", syncAction))
		}
	}

	return HealthReport{State: state, Attributes: attrs}, nil
}
