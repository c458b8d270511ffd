package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default launch site: the original bring-up location on the Swedish west
// coast. Used when the config leaves the start position unset.
const (
	defaultStartLatDeg = 57.89579925190799
	defaultStartLonDeg = 11.745555042076292
	defaultStartAltFt  = 106.0
)

type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Wind    WindConfig    `yaml:"wind"`
	Sim     SimConfig     `yaml:"sim"`
	Control ControlConfig `yaml:"control"`
}

type OutputConfig struct {
	// Mode selects the sink: "serial" (default) or "udp".
	Mode string `yaml:"mode"`

	Device  string `yaml:"device"`
	Baud    int    `yaml:"baud"`
	Backend string `yaml:"backend"`

	UDPDest string `yaml:"udp_dest"`
}

type WindConfig struct {
	// Path to the headerless altitude/bearing/speed wind table.
	Path string `yaml:"path"`
}

type SimConfig struct {
	StartLatDeg float64 `yaml:"start_lat_deg"`
	StartLonDeg float64 `yaml:"start_lon_deg"`
	StartAltFt  float64 `yaml:"start_alt_ft"`

	Interval time.Duration `yaml:"interval"`
	Settle   time.Duration `yaml:"settle"`
}

type ControlConfig struct {
	Enable       bool          `yaml:"enable"`
	PollInterval time.Duration `yaml:"poll_interval"`
	StepMPS      float64       `yaml:"step_mps"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config contains invalid fields: %w", err)
	}

	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills defaults in place and rejects configurations the
// simulator cannot run with. All such problems are fatal at startup.
func DefaultAndValidate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Output.Mode == "" {
		cfg.Output.Mode = "serial"
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Output.Mode))
	switch mode {
	case "serial":
		if strings.TrimSpace(cfg.Output.Device) == "" {
			return fmt.Errorf("output.device is required when output.mode is 'serial'")
		}
		if cfg.Output.Baud == 0 {
			cfg.Output.Baud = 4800
		}
		if cfg.Output.Baud < 0 {
			return fmt.Errorf("output.baud must be > 0")
		}
		if cfg.Output.Backend == "" {
			cfg.Output.Backend = "portable"
		}
		backend := strings.ToLower(strings.TrimSpace(cfg.Output.Backend))
		if backend != "portable" && backend != "termios" {
			return fmt.Errorf("output.backend must be 'portable' or 'termios'")
		}
	case "udp":
		if strings.TrimSpace(cfg.Output.UDPDest) == "" {
			return fmt.Errorf("output.udp_dest is required when output.mode is 'udp'")
		}
	default:
		return fmt.Errorf("output.mode must be 'serial' or 'udp'")
	}

	if strings.TrimSpace(cfg.Wind.Path) == "" {
		return fmt.Errorf("wind.path is required")
	}

	if cfg.Sim.StartLatDeg == 0 && cfg.Sim.StartLonDeg == 0 {
		cfg.Sim.StartLatDeg = defaultStartLatDeg
		cfg.Sim.StartLonDeg = defaultStartLonDeg
	}
	if cfg.Sim.StartAltFt == 0 {
		cfg.Sim.StartAltFt = defaultStartAltFt
	}
	if cfg.Sim.StartLatDeg < -90 || cfg.Sim.StartLatDeg > 90 {
		return fmt.Errorf("sim.start_lat_deg must be within [-90, 90]")
	}
	if cfg.Sim.StartLonDeg < -180 || cfg.Sim.StartLonDeg >= 180 {
		return fmt.Errorf("sim.start_lon_deg must be within [-180, 180)")
	}
	if cfg.Sim.Interval <= 0 {
		cfg.Sim.Interval = 1 * time.Second
	}
	if cfg.Sim.Settle == 0 {
		cfg.Sim.Settle = 5 * time.Second
	}
	if cfg.Sim.Settle < 0 {
		return fmt.Errorf("sim.settle must be >= 0")
	}

	if cfg.Control.PollInterval <= 0 {
		cfg.Control.PollInterval = 100 * time.Millisecond
	}
	if cfg.Control.StepMPS == 0 {
		cfg.Control.StepMPS = 0.1
	}
	if cfg.Control.StepMPS < 0 {
		return fmt.Errorf("control.step_mps must be > 0")
	}

	return nil
}
