// Package mqtt provides MQTT client connectivity for diskmon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect after a drop
//   - QoS 1 publishing with an acknowledgement timeout
//   - Topic subscriptions restored on reconnect
//   - Availability status with a Last Will for offline detection
//   - A stream of connection events for observability
//
// # Architecture
//
// The poll loop publishes through Client.Publish while a second goroutine
// runs Client.DrainEvents to log connection notifications. paho's client
// serialises outgoing packets internally, so both may run concurrently.
//
//	diskmon agent → Client.Publish ─┐
//	                                ├─ paho ↔ broker ↔ Home Assistant
//	DrainEvents ← event queue ──────┘
//
// # Failure Semantics
//
//   - Connect does not retry: an unreachable broker or bad credentials
//     return ErrConnectionFailed immediately (after at most 10s)
//   - After a successful connect, paho reconnects with backoff between
//     reconnect.initial_delay and reconnect.max_delay
//   - Publish returns ErrNotConnected while disconnected and
//     ErrPublishFailed when the broker does not acknowledge within 5s
//   - Message handlers run unordered on their own goroutines, so a
//     handler may publish without blocking acknowledgements
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, "nas01/availability")
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	go client.DrainEvents(ctx, log)
//	err = client.Publish("nas01/sda/state", []byte("Healthy"), false)
package mqtt
