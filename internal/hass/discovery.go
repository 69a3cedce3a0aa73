package hass

import (
	"encoding/json"
	"fmt"
)

// SensorIcon is the icon hint for every storage sensor.
const SensorIcon = "mdi:harddisk"

// SensorConfig is the JSON payload for an HA MQTT sensor discovery
// message. Field order is the serialised key order.
type SensorConfig struct {
	Icon                string `json:"icon"`
	Name                string `json:"name"`
	StateTopic          string `json:"state_topic"`
	JSONAttributesTopic string `json:"json_attributes_topic"`
	UniqueID            string `json:"unique_id"`
	AvailabilityTopic   string `json:"availability_topic,omitempty"`
}

// NewSensorConfig describes one device's sensor. availabilityTopic may be
// empty to leave availability unreported.
func NewSensorConfig(t Topics, name, deviceID, availabilityTopic string) SensorConfig {
	return SensorConfig{
		Icon:                SensorIcon,
		Name:                name,
		StateTopic:          t.State(deviceID),
		JSONAttributesTopic: t.Attributes(deviceID),
		UniqueID:            deviceID,
		AvailabilityTopic:   availabilityTopic,
	}
}

// DiscoveryPayload marshals the sensor config for one device.
func DiscoveryPayload(t Topics, name, deviceID, availabilityTopic string) ([]byte, error) {
	payload, err := json.Marshal(NewSensorConfig(t, name, deviceID, availabilityTopic))
	if err != nil {
		return nil, fmt.Errorf("marshalling discovery payload for %s: %w", deviceID, err)
	}
	return payload, nil
}
