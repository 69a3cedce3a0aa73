package hass

// DefaultDiscoveryPrefix is the Home Assistant discovery prefix used when
// none is configured.
const DefaultDiscoveryPrefix = "homeassistant"

// StateTopic returns the topic carrying a device's raw state string.
func StateTopic(nodeID, deviceID string) string {
	return nodeID + "/" + deviceID + "/state"
}

// AttributesTopic returns the topic carrying a device's JSON attributes.
func AttributesTopic(nodeID, deviceID string) string {
	return nodeID + "/" + deviceID + "/attributes"
}

// DiscoveryTopic returns the retained sensor config topic for a device.
// An empty prefix means DefaultDiscoveryPrefix.
func DiscoveryTopic(prefix, nodeID, deviceID string) string {
	return orDefault(prefix) + "/sensor/" + nodeID + "/" + deviceID + "/config"
}

// AvailabilityTopic returns the node-wide online/offline topic.
func AvailabilityTopic(nodeID string) string {
	return nodeID + "/availability"
}

// StatusTopic returns the topic Home Assistant announces its own
// online/offline status on (its birth and last will messages).
func StatusTopic(prefix string) string {
	return orDefault(prefix) + "/status"
}

func orDefault(prefix string) string {
	if prefix == "" {
		return DefaultDiscoveryPrefix
	}
	return prefix
}

// Topics binds the topic builders to one node.
type Topics struct {
	NodeID          string
	DiscoveryPrefix string
}

// State returns the state topic for deviceID.
func (t Topics) State(deviceID string) string {
	return StateTopic(t.NodeID, deviceID)
}

// Attributes returns the attributes topic for deviceID.
func (t Topics) Attributes(deviceID string) string {
	return AttributesTopic(t.NodeID, deviceID)
}

// Discovery returns the discovery config topic for deviceID.
func (t Topics) Discovery(deviceID string) string {
	return DiscoveryTopic(t.DiscoveryPrefix, t.NodeID, deviceID)
}

// Availability returns the node's availability topic.
func (t Topics) Availability() string {
	return AvailabilityTopic(t.NodeID)
}

// Status returns Home Assistant's status topic.
func (t Topics) Status() string {
	return StatusTopic(t.DiscoveryPrefix)
}
