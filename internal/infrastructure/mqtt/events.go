package mqtt

import (
	"context"
	"sync/atomic"
	"time"
)

// eventBufferSize bounds queued connection events. Events beyond it are
// dropped and counted rather than blocking paho's callback goroutines.
const eventBufferSize = 32

// EventKind identifies a connection notification.
type EventKind string

// Connection event kinds.
const (
	EventConnected      EventKind = "connected"
	EventConnectionLost EventKind = "connection_lost"
	EventReconnecting   EventKind = "reconnecting"
)

// Event is a connection notification produced by the paho callbacks.
type Event struct {
	Kind EventKind
	Err  error
	Time time.Time
}

// DroppedEvents returns the number of events discarded because the
// buffer was full.
func (c *Client) DroppedEvents() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// emit queues an event without blocking.
func (c *Client) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	if c.eventsClosed {
		return
	}

	select {
	case c.events <- ev:
	default:
		atomic.AddUint64(&c.dropped, 1)
	}
}

// closeEvents closes the event stream once.
func (c *Client) closeEvents() {
	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	if c.eventsClosed || c.events == nil {
		return
	}
	c.eventsClosed = true
	close(c.events)
}

// DrainEvents logs connection events until ctx is cancelled or the event
// stream is closed. It is purely observational and is meant to run in its
// own goroutine for the lifetime of the process.
func (c *Client) DrainEvents(ctx context.Context, logger Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			logEvent(logger, ev)
		}
	}
}

// logEvent writes one event at a level matching its severity.
func logEvent(logger Logger, ev Event) {
	switch ev.Kind {
	case EventConnected:
		logger.Info("MQTT connected")
	case EventConnectionLost:
		logger.Warn("MQTT connection lost", "error", ev.Err)
	case EventReconnecting:
		logger.Info("MQTT reconnecting")
	default:
		logger.Debug("MQTT event", "kind", string(ev.Kind))
	}
}
