package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/diskmon/internal/hass"
	"github.com/nerrad567/diskmon/internal/monitor"
)

// payloadOnline is Home Assistant's birth message payload.
const payloadOnline = "online"

// Publisher sends MQTT messages at QoS 1. Satisfied by *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
}

// Poller produces a health report for a device. Satisfied by
// *monitor.Registry.
type Poller interface {
	Poll(ctx context.Context, spec monitor.DeviceSpec) (monitor.HealthReport, error)
}

// Logger defines the logging interface for the agent.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures an Agent.
type Options struct {
	Topics  hass.Topics
	Devices []monitor.DeviceSpec

	// Interval is the pause between the end of one cycle and the start of
	// the next.
	Interval time.Duration

	// Availability adds the node availability topic to discovery payloads.
	Availability bool

	Logger Logger
}

// Result is the outcome of one device within a cycle.
type Result struct {
	Device monitor.DeviceSpec
	Report monitor.HealthReport
	Err    error
}

// Stats summarises the agent's activity since start.
type Stats struct {
	Cycles            uint64
	Polls             uint64
	Failures          uint64
	Announcements     uint64
	LastCycleID       string
	LastCycleAt       time.Time
	LastCycleDuration time.Duration
}

// Agent announces devices and periodically publishes their health.
type Agent struct {
	publisher Publisher
	poller    Poller
	opts      Options
	logger    Logger

	// announceMu serialises Announce between Run and HandleStatus.
	announceMu sync.Mutex

	// republishing tracks announcements started by HandleStatus.
	republishing sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// New creates an agent.
func New(publisher Publisher, poller Poller, opts Options) (*Agent, error) {
	if publisher == nil || poller == nil {
		return nil, fmt.Errorf("%w: publisher and poller are required", ErrInvalidOptions)
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidOptions, opts.Interval)
	}
	if opts.Topics.NodeID == "" {
		return nil, fmt.Errorf("%w: node id is required", ErrInvalidOptions)
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Agent{
		publisher: publisher,
		poller:    poller,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Announce publishes the retained discovery payload for every device, in
// configuration order. It stops at the first failure.
func (a *Agent) Announce() error {
	a.announceMu.Lock()
	defer a.announceMu.Unlock()

	availability := ""
	if a.opts.Availability {
		availability = a.opts.Topics.Availability()
	}

	for _, d := range a.opts.Devices {
		payload, err := hass.DiscoveryPayload(a.opts.Topics, d.Name, d.ID, availability)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAnnounceFailed, d.ID, err)
		}

		topic := a.opts.Topics.Discovery(d.ID)
		if err := a.publisher.Publish(topic, payload, true); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAnnounceFailed, d.ID, err)
		}

		a.logger.Debug("discovery published", "device", d.ID, "topic", topic)
	}

	a.mu.Lock()
	a.stats.Announcements++
	a.mu.Unlock()

	a.logger.Info("devices announced", "count", len(a.opts.Devices))
	return nil
}

// RunCycle polls and publishes every device once, in configuration order.
// Failures are logged and recorded in the returned results; they never stop
// the cycle. A cancelled ctx ends the cycle before the next device.
func (a *Agent) RunCycle(ctx context.Context) []Result {
	cycleID := uuid.NewString()
	started := time.Now()
	results := make([]Result, 0, len(a.opts.Devices))

	var failures uint64
	for _, d := range a.opts.Devices {
		if ctx.Err() != nil {
			break
		}

		report, err := a.pollAndPublish(ctx, d)
		if err != nil {
			failures++
			a.logger.Warn("device check failed",
				"device", d.ID,
				"kind", string(d.Kind),
				"cycle_id", cycleID,
				"error", err,
			)
		} else {
			a.logger.Debug("device state published",
				"device", d.ID,
				"state", report.State,
				"cycle_id", cycleID,
			)
		}
		results = append(results, Result{Device: d, Report: report, Err: err})
	}

	duration := time.Since(started)

	a.mu.Lock()
	a.stats.Cycles++
	a.stats.Polls += uint64(len(results))
	a.stats.Failures += failures
	a.stats.LastCycleID = cycleID
	a.stats.LastCycleAt = started
	a.stats.LastCycleDuration = duration
	a.mu.Unlock()

	a.logger.Info("poll cycle complete",
		"cycle_id", cycleID,
		"devices", len(results),
		"failures", failures,
		"duration", duration,
	)

	return results
}

// pollAndPublish handles one device: state first, then attributes.
func (a *Agent) pollAndPublish(ctx context.Context, d monitor.DeviceSpec) (monitor.HealthReport, error) {
	report, err := a.poller.Poll(ctx, d)
	if err != nil {
		return monitor.HealthReport{}, err
	}

	attrs, err := report.AttributesJSON()
	if err != nil {
		return report, fmt.Errorf("device %s: %w", d.ID, err)
	}

	if err := a.publisher.Publish(a.opts.Topics.State(d.ID), []byte(report.State), false); err != nil {
		return report, fmt.Errorf("publishing state for %s: %w", d.ID, err)
	}
	if err := a.publisher.Publish(a.opts.Topics.Attributes(d.ID), attrs, false); err != nil {
		return report, fmt.Errorf("publishing attributes for %s: %w", d.ID, err)
	}

	return report, nil
}

// Run announces all devices, then cycles until ctx is cancelled. It
// returns the announce error, or nil once ctx is done.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.Announce(); err != nil {
		return err
	}

	a.logger.Info("poll loop started",
		"devices", len(a.opts.Devices),
		"interval", a.opts.Interval,
	)

	timer := time.NewTimer(a.opts.Interval)
	defer timer.Stop()

	for {
		a.RunCycle(ctx)

		timer.Reset(a.opts.Interval)
		select {
		case <-ctx.Done():
			a.logger.Info("poll loop stopped", "reason", ctx.Err())
			return nil
		case <-timer.C:
		}
	}
}

// HandleStatus re-announces all devices when Home Assistant publishes its
// birth message. Its signature matches mqtt.MessageHandler.
//
// The announcement runs on its own goroutine: paho delivers messages on the
// goroutine that also routes acknowledgements, so publishing inline would
// stall until every QoS 1 publish timed out.
func (a *Agent) HandleStatus(topic string, payload []byte) error {
	if strings.TrimSpace(string(payload)) != payloadOnline {
		return nil
	}

	a.logger.Info("home assistant came online, republishing discovery", "topic", topic)

	a.republishing.Add(1)
	go func() {
		defer a.republishing.Done()
		if err := a.Announce(); err != nil {
			a.logger.Warn("republishing discovery failed", "error", err)
		}
	}()
	return nil
}

// WaitRepublish blocks until announcements started by HandleStatus finish.
func (a *Agent) WaitRepublish() {
	a.republishing.Wait()
}

// Stats returns a snapshot of the agent's counters.
func (a *Agent) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}
