package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/diskmon/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang with diskmon-specific functionality.
//
// It provides connection management, message publishing, subscription
// handling, automatic reconnection and a stream of connection events.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Publishing from the poll loop while DrainEvents runs is supported.
//   - Subscriptions are automatically restored on reconnection.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	// availabilityTopic receives retained online/offline messages.
	// Empty disables availability reporting.
	availabilityTopic string

	// subscriptions maps topic to handler for re-subscription on reconnect.
	subscriptions map[string]MessageHandler
	subMu         sync.RWMutex

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// events carries connection notifications to DrainEvents.
	events       chan Event
	eventsClosed bool
	eventsMu     sync.Mutex
	dropped      uint64

	// logger for handler error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Order is not preserved (SetOrderMatters(false)), so paho runs each
// handler on its own goroutine and a handler may block. A returned error
// is logged and does not affect acknowledgement.
type MessageHandler func(topic string, payload []byte) error

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Configures a Last Will on availabilityTopic (when non-empty)
//  3. Enables auto-reconnect with exponential backoff for later drops
//  4. Attempts the initial connection with timeout
//
// The initial attempt is not retried: an unreachable broker or rejected
// credentials are returned as ErrConnectionFailed.
//
// Parameters:
//   - cfg: MQTT configuration from the config file
//   - availabilityTopic: topic for retained online/offline status, or ""
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If initial connection fails within timeout
func Connect(cfg config.MQTTConfig, availabilityTopic string) (*Client, error) {
	opts := buildClientOptions(cfg)
	if availabilityTopic != "" {
		configureLWT(opts, availabilityTopic)
	}

	c := newClient(cfg, opts, availabilityTopic)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.emit(Event{Kind: EventReconnecting})
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.client.Disconnect(0)
		c.closeEvents()
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		c.closeEvents()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnectHandler runs asynchronously and may not have executed
	// yet, so mark the client connected here as well.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

// newClient allocates a Client without connecting it.
func newClient(cfg config.MQTTConfig, opts *pahomqtt.ClientOptions, availabilityTopic string) *Client {
	return &Client{
		cfg:               cfg,
		options:           opts,
		availabilityTopic: availabilityTopic,
		subscriptions:     make(map[string]MessageHandler),
		events:            make(chan Event, eventBufferSize),
	}
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.restoreSubscriptions()
	c.publishAvailability(payloadOnline)

	c.emit(Event{Kind: EventConnected})
}

// handleDisconnect is called when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.emit(Event{Kind: EventConnectionLost, Err: err})
}

// publishAvailability publishes a retained status to the availability topic.
// Fire-and-forget: it runs from paho callbacks that must not block.
func (c *Client) publishAvailability(status string) {
	if c.availabilityTopic == "" || c.client == nil {
		return
	}
	c.client.Publish(c.availabilityTopic, qosAtLeastOnce, true, status)
}

// Close gracefully disconnects from the MQTT broker.
//
// It performs:
//  1. Publishes a retained "offline" status (when availability is enabled)
//  2. Waits for pending publish operations
//  3. Disconnects from broker and closes the event stream
//
// Returns:
//   - error: Always nil; a connection that is already closed is not an error
func (c *Client) Close() error {
	if c.client == nil {
		c.closeEvents()
		return nil
	}

	if c.IsConnected() && c.availabilityTopic != "" {
		token := c.client.Publish(c.availabilityTopic, qosAtLeastOnce, true, payloadOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.closeEvents()
	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// SetLogger sets a logger for handler error and panic logging.
// If not set, errors in handlers are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
