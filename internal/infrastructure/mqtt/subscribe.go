package mqtt

import (
	"fmt"
)

// Subscribe registers handler for topic at QoS 1. The subscription is
// remembered and restored by handleConnect after every reconnect.
//
// diskmon uses a single subscription: Home Assistant's birth topic
// (<discovery_prefix>/status) when discovery.republish_on_birth is set.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: %s: nil handler", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = handler
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qosAtLeastOnce, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.forgetSubscription(topic)
		return fmt.Errorf("%w: %s: no acknowledgement after %v", ErrSubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.forgetSubscription(topic)
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}
	return nil
}

// forgetSubscription drops topic so it is not restored on reconnect.
func (c *Client) forgetSubscription(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// restoreSubscriptions re-subscribes every remembered topic.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for topic, handler := range c.subscriptions {
		// Runs on paho's connect callback, so the token is not awaited.
		// A failure shows up as a lost connection.
		c.client.Subscribe(topic, qosAtLeastOnce, c.wrapHandler(handler))
	}
}
