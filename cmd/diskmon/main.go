// diskmon - storage health telemetry for Home Assistant
//
// diskmon periodically checks SATA disks (SMART via smartctl) and Linux md
// RAID arrays (sysfs) and publishes their state and attributes over MQTT
// using Home Assistant auto-discovery.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/diskmon/internal/agent"
	"github.com/nerrad567/diskmon/internal/hass"
	"github.com/nerrad567/diskmon/internal/infrastructure/config"
	"github.com/nerrad567/diskmon/internal/infrastructure/logging"
	"github.com/nerrad567/diskmon/internal/infrastructure/mqtt"
	"github.com/nerrad567/diskmon/internal/monitor"
	"github.com/nerrad567/diskmon/internal/process"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "/etc/diskmon/config.yaml"

// errChecksFailed is returned by the check command when any device failed.
var errChecksFailed = errors.New("device checks failed")

func main() {
	// Cancel on Ctrl+C and SIGTERM so the poll loop can stop between sleeps
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "diskmon",
		Short: "Publish disk and RAID health to Home Assistant over MQTT",
		Long: `diskmon polls SATA disks through smartctl and Linux md arrays through
sysfs, then publishes each device's state and attributes to MQTT. Devices
are announced with Home Assistant MQTT discovery so they appear as sensors
without any manual configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), resolveConfigPath(configPath))
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $DISKMON_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(newCheckCmd(&configPath), newVersionCmd())
	return root
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Poll every device once and print the reports as JSON",
		Long: `check polls each configured device once without connecting to MQTT and
prints what would be published. It exits non-zero if any device fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return check(cmd.Context(), resolveConfigPath(*configPath), cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "diskmon %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// resolveConfigPath returns the flag value, then DISKMON_CONFIG, then the
// default path.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("DISKMON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// run is the agent's main logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path to the YAML configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting diskmon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"node_id", cfg.NodeID,
		"devices", len(cfg.Devices),
	)

	specs, err := monitor.SpecsFromConfig(cfg.Devices)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	topics := hass.Topics{NodeID: cfg.NodeID, DiscoveryPrefix: cfg.DiscoveryPrefix}

	availabilityTopic := ""
	if cfg.MQTT.Availability {
		availabilityTopic = topics.Availability()
	}

	mqttLog := log.Component("mqtt")
	mqttClient, err := mqtt.Connect(cfg.MQTT, availabilityTopic)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("closing MQTT connection")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(mqttLog)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	go mqttClient.DrainEvents(ctx, mqttLog)

	a, err := agent.New(mqttClient, newRegistry(cfg, log), agent.Options{
		Topics:       topics,
		Devices:      specs,
		Interval:     cfg.GetInterval(),
		Availability: cfg.MQTT.Availability,
		Logger:       log.Component("agent"),
	})
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	if cfg.Discovery.RepublishOnBirth {
		if subErr := mqttClient.Subscribe(topics.Status(), a.HandleStatus); subErr != nil {
			log.Warn("home assistant status subscription failed, discovery will not be republished",
				"topic", topics.Status(),
				"error", subErr,
			)
		}
	}

	runErr := a.Run(ctx)
	a.WaitRepublish()
	if runErr != nil {
		return fmt.Errorf("running agent: %w", runErr)
	}

	stats := a.Stats()
	log.Info("diskmon stopped",
		"cycles", stats.Cycles,
		"polls", stats.Polls,
		"failures", stats.Failures,
		"mqtt_events_dropped", mqttClient.DroppedEvents(),
	)
	return nil
}

// newRegistry wires the device monitors from configuration.
func newRegistry(cfg *config.Config, log *logging.Logger) *monitor.Registry {
	runner := process.NewRunner()
	runner.SetLogger(log.Component("process"))

	sata := monitor.NewSataMonitor(monitor.NewSmartctl(runner, cfg.Smartctl))
	sata.SetLogger(log.Component("monitor"))

	raid := monitor.NewRaidMonitor(monitor.FileReader{}, cfg.SysfsRoot)

	return monitor.NewRegistry(sata, raid)
}

// checkResult is one device's entry in the check command's output.
type checkResult struct {
	Device     string `json:"device"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	State      string `json:"state,omitempty"`
	Attributes any    `json:"attributes,omitempty"`
	Error      string `json:"error,omitempty"`
}

// check polls every device once and writes the reports to w.
func check(ctx context.Context, configPath string, w io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries the report
	cfg.Logging.Output = "stderr"
	log := logging.New(cfg.Logging, version)

	specs, err := monitor.SpecsFromConfig(cfg.Devices)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	registry := newRegistry(cfg, log)

	results := make([]checkResult, 0, len(specs))
	failed := 0
	for _, spec := range specs {
		r := checkResult{Device: spec.ID, Name: spec.Name, Kind: string(spec.Kind)}
		report, pollErr := registry.Poll(ctx, spec)
		if pollErr != nil {
			failed++
			r.Error = pollErr.Error()
		} else {
			r.State = report.State
			r.Attributes = report.Attributes
		}
		results = append(results, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errChecksFailed, failed, len(specs))
	}
	return nil
}
