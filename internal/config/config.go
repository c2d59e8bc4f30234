// Package config loads the runtime configuration: tick rate, wire sink
// endpoint, inbound trigger ports, and suppression thresholds.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the YAML runtime configuration.
type Config struct {
	// TickHz is the evaluation rate. 60 unless overridden.
	TickHz float64 `yaml:"tickHz"`
	// EpsilonMeters is the per-axis change suppression threshold.
	EpsilonMeters float64 `yaml:"epsilonMeters"`
	// QueueSize bounds the trigger command queue.
	QueueSize int `yaml:"queueSize"`

	OSC OSC  `yaml:"osc"`
	In  In   `yaml:"in"`
	MIDI MIDI `yaml:"midi"`
}

// OSC is the outbound wire sink endpoint.
type OSC struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// SendIntervalMS is the sink's minimum inter-send interval.
	SendIntervalMS int `yaml:"sendIntervalMS"`
}

// In configures the inbound OSC trigger listener.
type In struct {
	Enable bool `yaml:"enable"`
	Port   int  `yaml:"port"`
}

// MIDI configures the MIDI trigger source.
type MIDI struct {
	Enable bool   `yaml:"enable"`
	Device string `yaml:"device"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		TickHz:        60,
		EpsilonMeters: 1e-4,
		QueueSize:     256,
		OSC: OSC{
			Host:           "localhost",
			Port:           4003,
			SendIntervalMS: 20,
		},
		In: In{
			Enable: true,
			Port:   9000,
		},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TickHz <= 0 || c.TickHz > 1000 {
		return fmt.Errorf("config: tickHz %g out of range", c.TickHz)
	}
	if c.OSC.Port <= 0 || c.OSC.Port > 65535 {
		return fmt.Errorf("config: osc port %d out of range", c.OSC.Port)
	}
	if c.In.Enable && (c.In.Port <= 0 || c.In.Port > 65535) {
		return fmt.Errorf("config: inbound port %d out of range", c.In.Port)
	}
	return nil
}

// TickInterval converts the rate into the loop's tick period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickHz)
}

// SendInterval is the sink's minimum inter-send interval.
func (c Config) SendInterval() time.Duration {
	return time.Duration(c.OSC.SendIntervalMS) * time.Millisecond
}
