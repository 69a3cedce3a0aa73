package monitor

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/nerrad567/diskmon/internal/infrastructure/config"
	"github.com/nerrad567/diskmon/internal/process"
)

// Smartctl is the SmartQuerier backed by the smartctl binary.
type Smartctl struct {
	runner  *process.Runner
	binary  string
	args    []string
	timeout time.Duration
}

// NewSmartctl creates a querier that runs cfg.Binary with cfg.Args followed
// by the device path.
func NewSmartctl(runner *process.Runner, cfg config.SmartctlConfig) *Smartctl {
	return &Smartctl{
		runner:  runner,
		binary:  cfg.Binary,
		args:    slices.Clone(cfg.Args),
		timeout: cfg.GetTimeout(),
	}
}

// QuerySmart implements SmartQuerier.
func (s *Smartctl) QuerySmart(ctx context.Context, devicePath string, consume func(io.Reader) error) error {
	return s.runner.Run(ctx, process.Command{
		Name:    "smartctl",
		Binary:  s.binary,
		Args:    append(slices.Clone(s.args), devicePath),
		Timeout: s.timeout,
	}, consume)
}
