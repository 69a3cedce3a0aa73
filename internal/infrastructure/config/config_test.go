package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
node_id: "nas01"
interval: 30
mqtt:
  broker:
    host: "broker.lan"
    port: 1884
  auth:
    username: "diskmon"
    password: "secret"
smartctl:
  timeout: 45
devices:
  - type: sata
    name: "Parity disk"
    device: sda
  - type: md_raid
    name: "Data array"
    device: md0
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.NodeID != "nas01" {
		t.Errorf("NodeID = %q, want %q", cfg.NodeID, "nas01")
	}
	if cfg.MQTT.Broker.Host != "broker.lan" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.lan")
	}
	if cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker.Port = %d, want 1884", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Broker.ClientID != "nas01" {
		t.Errorf("MQTT.Broker.ClientID = %q, want node_id %q", cfg.MQTT.Broker.ClientID, "nas01")
	}
	if cfg.DiscoveryPrefix != DefaultDiscoveryPrefix {
		t.Errorf("DiscoveryPrefix = %q, want %q", cfg.DiscoveryPrefix, DefaultDiscoveryPrefix)
	}
	if cfg.GetInterval() != 30*time.Second {
		t.Errorf("GetInterval() = %v, want 30s", cfg.GetInterval())
	}
	if cfg.Smartctl.GetTimeout() != 45*time.Second {
		t.Errorf("Smartctl.GetTimeout() = %v, want 45s", cfg.Smartctl.GetTimeout())
	}
	if cfg.Smartctl.Binary != "smartctl" {
		t.Errorf("Smartctl.Binary = %q, want default smartctl", cfg.Smartctl.Binary)
	}
	if len(cfg.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(cfg.Devices))
	}
	if cfg.Devices[1].Type != DeviceTypeMdRaid || cfg.Devices[1].Device != "md0" {
		t.Errorf("Devices[1] = %+v, want md_raid md0", cfg.Devices[1])
	}
}

func TestLoad_ExplicitPrefixAndClientID(t *testing.T) {
	content := `
node_id: nas01
discovery_prefix: ha
mqtt:
  broker:
    client_id: custom-client
devices:
  - {type: sata, name: Disk, device: sdb}
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DiscoveryPrefix != "ha" {
		t.Errorf("DiscoveryPrefix = %q, want %q", cfg.DiscoveryPrefix, "ha")
	}
	if cfg.MQTT.Broker.ClientID != "custom-client" {
		t.Errorf("ClientID = %q, want %q", cfg.MQTT.Broker.ClientID, "custom-client")
	}
}

func TestLoad_SmartctlTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"disabled", "0", 0},
		{"seconds", "30", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `
node_id: nas01
smartctl:
  timeout: ` + tt.timeout + `
devices:
  - type: sata
    name: Disk
    device: sda
`
			cfg, err := Load(writeConfig(t, content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := cfg.Smartctl.GetTimeout(); got != tt.want {
				t.Errorf("GetTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
node_id: ""
devices:
  - {type: sata, name: Disk, device: sda}
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for empty node_id, got nil")
	}
}

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.NodeID = "nas01"
	cfg.Devices = []DeviceConfig{
		{Type: DeviceTypeSata, Name: "Disk", Device: "sda"},
		{Type: DeviceTypeMdRaid, Name: "Array", Device: "md0"},
	}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing node ID",
			mutate:  func(c *Config) { c.NodeID = "" },
			wantErr: "node_id is required",
		},
		{
			name:    "node ID with separator",
			mutate:  func(c *Config) { c.NodeID = "nas/01" },
			wantErr: "node_id",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Interval = 0 },
			wantErr: "interval",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "no devices",
			mutate:  func(c *Config) { c.Devices = nil },
			wantErr: "at least one device",
		},
		{
			name: "unknown device type",
			mutate: func(c *Config) {
				c.Devices[0].Type = "nvme"
			},
			wantErr: "devices[0].type",
		},
		{
			name: "missing device name",
			mutate: func(c *Config) {
				c.Devices[1].Name = ""
			},
			wantErr: "devices[1].name",
		},
		{
			name: "wildcard in device id",
			mutate: func(c *Config) {
				c.Devices[0].Device = "sd+"
			},
			wantErr: "not a valid MQTT topic segment",
		},
		{
			name: "duplicate device id",
			mutate: func(c *Config) {
				c.Devices[1].Device = "sda"
			},
			wantErr: "duplicated",
		},
		{
			name:    "negative smartctl timeout",
			mutate:  func(c *Config) { c.Smartctl.TimeoutSeconds = -1 },
			wantErr: "smartctl.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidTopicSegment(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"sda", true},
		{"md0", true},
		{"nvme0n1", true},
		{"", false},
		{"a/b", false},
		{"#", false},
		{"sd+", false},
		{"bad\nid", false},
		{"nul\x00", false},
	}

	for _, tt := range tests {
		if got := ValidTopicSegment(tt.input); got != tt.want {
			t.Errorf("ValidTopicSegment(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("DISKMON_NODE_ID", "env-node")
	t.Setenv("DISKMON_MQTT_HOST", "mqtt.example.com")
	t.Setenv("DISKMON_MQTT_USERNAME", "testuser")
	t.Setenv("DISKMON_MQTT_PASSWORD", "testpass")

	applyEnvOverrides(cfg)

	if cfg.NodeID != "env-node" {
		t.Errorf("NodeID = %q, want %q", cfg.NodeID, "env-node")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.DiscoveryPrefix != "homeassistant" {
		t.Errorf("defaultConfig DiscoveryPrefix = %q, want homeassistant", cfg.DiscoveryPrefix)
	}
	if cfg.SysfsRoot != "/sys/class/block" {
		t.Errorf("defaultConfig SysfsRoot = %q, want /sys/class/block", cfg.SysfsRoot)
	}
	if got := strings.Join(cfg.Smartctl.Args, " "); got != "-iaj --nocheck standby" {
		t.Errorf("defaultConfig Smartctl.Args = %q, want %q", got, "-iaj --nocheck standby")
	}
}
