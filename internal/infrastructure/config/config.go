package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Device type identifiers accepted in the devices list.
const (
	DeviceTypeSata   = "sata"
	DeviceTypeMdRaid = "md_raid"
)

// DefaultDiscoveryPrefix is the Home Assistant discovery prefix used when
// discovery_prefix is not configured.
const DefaultDiscoveryPrefix = "homeassistant"

// Config is the root configuration structure for diskmon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	NodeID          string          `yaml:"node_id"`
	DiscoveryPrefix string          `yaml:"discovery_prefix"`
	Interval        int             `yaml:"interval"`
	MQTT            MQTTConfig      `yaml:"mqtt"`
	Discovery       DiscoveryConfig `yaml:"discovery"`
	Smartctl        SmartctlConfig  `yaml:"smartctl"`
	SysfsRoot       string          `yaml:"sysfs_root"`
	Logging         LoggingConfig   `yaml:"logging"`
	Devices         []DeviceConfig  `yaml:"devices"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// Availability enables the <node_id>/availability topic, its Last Will
	// and the availability_topic field in discovery payloads.
	Availability bool `yaml:"availability"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DiscoveryConfig controls Home Assistant discovery behaviour.
type DiscoveryConfig struct {
	// RepublishOnBirth re-announces every device when Home Assistant
	// publishes "online" on <discovery_prefix>/status.
	RepublishOnBirth bool `yaml:"republish_on_birth"`
}

// SmartctlConfig describes how the SMART query tool is invoked.
type SmartctlConfig struct {
	Binary string   `yaml:"binary"`
	Args   []string `yaml:"args"`

	// TimeoutSeconds bounds a single smartctl run. Zero means no timeout.
	TimeoutSeconds int `yaml:"timeout"`
}

// GetTimeout returns the smartctl timeout as a Duration.
func (s SmartctlConfig) GetTimeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DeviceConfig is one entry of the monitored device list.
type DeviceConfig struct {
	Type   string `yaml:"type"`
	Name   string `yaml:"name"`
	Device string `yaml:"device"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//  4. Derived defaults (client ID from node ID)
//
// Environment variables follow the pattern: DISKMON_SECTION_KEY
// For example: DISKMON_MQTT_HOST, DISKMON_NODE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDerivedDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		DiscoveryPrefix: DefaultDiscoveryPrefix,
		Interval:        60,
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Smartctl: SmartctlConfig{
			Binary: "smartctl",
			Args:   []string{"-iaj", "--nocheck", "standby"},
		},
		SysfsRoot: "/sys/class/block",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DISKMON_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DISKMON_NODE_ID"); v != "" {
		cfg.NodeID = v
	}

	// MQTT
	if v := os.Getenv("DISKMON_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DISKMON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DISKMON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// applyDerivedDefaults fills values that default to other settings.
func applyDerivedDefaults(cfg *Config) {
	if cfg.DiscoveryPrefix == "" {
		cfg.DiscoveryPrefix = DefaultDiscoveryPrefix
	}
	if cfg.MQTT.Broker.ClientID == "" {
		cfg.MQTT.Broker.ClientID = cfg.NodeID
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.NodeID == "" {
		errs = append(errs, "node_id is required")
	} else if !ValidTopicSegment(c.NodeID) {
		errs = append(errs, fmt.Sprintf("node_id %q is not a valid MQTT topic segment", c.NodeID))
	}

	if c.Interval < 1 {
		errs = append(errs, "interval must be at least 1 second")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Reconnect.InitialDelay < 0 || c.MQTT.Reconnect.MaxDelay < 0 {
		errs = append(errs, "mqtt.reconnect delays must not be negative")
	}

	if c.Smartctl.Binary == "" {
		errs = append(errs, "smartctl.binary is required")
	}
	if c.Smartctl.TimeoutSeconds < 0 {
		errs = append(errs, "smartctl.timeout must not be negative (seconds)")
	}

	if len(c.Devices) == 0 {
		errs = append(errs, "at least one device is required")
	}
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		switch d.Type {
		case DeviceTypeSata, DeviceTypeMdRaid:
		default:
			errs = append(errs, fmt.Sprintf("devices[%d].type %q must be %q or %q", i, d.Type, DeviceTypeSata, DeviceTypeMdRaid))
		}
		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].name is required", i))
		}
		if !ValidTopicSegment(d.Device) {
			errs = append(errs, fmt.Sprintf("devices[%d].device %q is not a valid MQTT topic segment", i, d.Device))
			continue
		}
		if seen[d.Device] {
			errs = append(errs, fmt.Sprintf("devices[%d].device %q is duplicated", i, d.Device))
		}
		seen[d.Device] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetInterval returns the poll interval as a Duration.
func (c *Config) GetInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// ValidTopicSegment reports whether s can be used as a single MQTT topic
// level: non-empty, no separators, no wildcards, no control characters.
func ValidTopicSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '/' || r == '+' || r == '#' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
