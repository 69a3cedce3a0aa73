package mqtt

import "errors"

// Sentinel errors returned by Client. Match them with errors.Is.
var (
	// ErrNotConnected means the client is between connections. The agent
	// counts it as a failure for the current device and carries on.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed means the first connection attempt was refused
	// or timed out. diskmon exits on it.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed covers oversized payloads, missing acknowledgements
	// and broker-side errors.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when the birth topic cannot be
	// subscribed.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
