package mqtt

import (
	"fmt"
)

// maxPayloadSize caps a single message. SMART reports are a few KB, so a
// payload near this size means a decoding bug upstream.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic at QoS 1 and waits for the broker's
// PUBACK, at most defaultPublishTimeout.
//
// Discovery configs are published retained so Home Assistant finds them
// after a restart; state and attributes are not.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %s: payload is %d bytes, limit %d", ErrPublishFailed, topic, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qosAtLeastOnce, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: no acknowledgement after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}
