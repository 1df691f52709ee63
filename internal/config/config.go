// Package config loads the control configuration file. The file is
// re-read every control cycle so edits take effect on the next tick
// without a restart.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/ac-controller/internal/logic"
)

// Config is the active control configuration.
type Config struct {
	Band       logic.Band
	Restricted logic.Window
}

// Default returns the fallback configuration used when the file is
// unreadable and no config has been accepted yet.
func Default() Config {
	return Config{
		Band: logic.Band{On: 24.0, Off: 22.5},
		Restricted: logic.Window{
			Start: logic.TimeOfDay{Hour: 21, Minute: 0},
			End:   logic.TimeOfDay{Hour: 10, Minute: 0},
		},
	}
}

// timeOfDay wraps logic.TimeOfDay to support YAML unmarshalling from
// "HH:MM" strings.
type timeOfDay struct {
	logic.TimeOfDay
}

func (t *timeOfDay) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode time of day: %w", err)
	}
	tod, err := logic.ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	t.TimeOfDay = tod
	return nil
}

// fileConfig is the on-disk YAML shape.
type fileConfig struct {
	TemperatureOn  float64 `yaml:"temperature_on"`
	TemperatureOff float64 `yaml:"temperature_off"`
	RestrictedTime struct {
		Start timeOfDay `yaml:"start"`
		End   timeOfDay `yaml:"end"`
	} `yaml:"restricted_time"`
}

// Parse decodes and validates a config document.
func Parse(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Band: logic.Band{On: fc.TemperatureOn, Off: fc.TemperatureOff},
		Restricted: logic.Window{
			Start: fc.RestrictedTime.Start.TimeOfDay,
			End:   fc.RestrictedTime.End.TimeOfDay,
		},
	}
	if !cfg.Band.Valid() {
		return Config{}, fmt.Errorf("temperature_on (%.1f) must be above temperature_off (%.1f)",
			cfg.Band.On, cfg.Band.Off)
	}
	return cfg, nil
}

// Loader re-reads a config file on every call, falling back to the last
// accepted config (or the defaults) when the file is missing, malformed,
// or fails validation.
type Loader struct {
	path string
	last Config

	// lastErr dedupes log output: a persistent failure is logged once
	// when it appears, not on every tick.
	lastErr string
}

// NewLoader creates a Loader for the given path. An empty path always
// yields the defaults.
func NewLoader(path string) *Loader {
	return &Loader{path: path, last: Default()}
}

// Load returns the current configuration. It never fails; faults fall
// back to the last accepted config.
func (l *Loader) Load() Config {
	if l.path == "" {
		return l.last
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		l.logOnce(fmt.Sprintf("config: read %s: %v (using last accepted)", l.path, err))
		return l.last
	}

	cfg, err := Parse(data)
	if err != nil {
		l.logOnce(fmt.Sprintf("config: %s: %v (using last accepted)", l.path, err))
		return l.last
	}

	if l.lastErr != "" {
		log.Printf("config: %s readable again", l.path)
		l.lastErr = ""
	}
	l.last = cfg
	return cfg
}

func (l *Loader) logOnce(msg string) {
	if msg == l.lastErr {
		return
	}
	log.Print(msg)
	l.lastErr = msg
}
