package config

import (
	"os"
	"sort"
	"strconv"

	"countdown/internal/entry"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	Port        int               `yaml:"port"`
	StaticDir   string            `yaml:"static_dir"`
	IntentRate  float64           `yaml:"intent_rate"`  // intents per second per connection
	IntentBurst int               `yaml:"intent_burst"` // burst allowance per connection
	HistorySize int               `yaml:"history_size"`
	Presets     map[string]string `yaml:"presets"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:        8420,
		StaticDir:   "./frontend/dist",
		IntentRate:  20,
		IntentBurst: 40,
		HistorySize: 100,
		Presets: map[string]string{
			"tea":  "000300",
			"egg":  "000700",
			"nap":  "002000",
			"hour": "010000",
		},
	}
}

// Load reads path on top of the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		// A presets table in the file replaces the defaults rather than
		// merging into them.
		defaults := cfg.Presets
		cfg.Presets = nil
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
		if cfg.Presets == nil {
			cfg.Presets = defaults
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("INTENT_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.IntentRate = f
		}
	}
	if v := os.Getenv("INTENT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IntentBurst = n
		}
	}
}

// Validate checks ranges and that every preset is a valid entry.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port out of range: %d", c.Port)
	}
	if c.IntentRate <= 0 {
		return errors.Errorf("intent_rate must be positive, got %v", c.IntentRate)
	}
	if c.IntentBurst < 1 {
		return errors.Errorf("intent_burst must be at least 1, got %d", c.IntentBurst)
	}
	if _, err := c.ParsePresets(); err != nil {
		return err
	}
	return nil
}

// ParsePresets converts the preset table into entry buffers.
func (c Config) ParsePresets() (map[string]entry.Buffer, error) {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	presets := make(map[string]entry.Buffer, len(names))
	for _, name := range names {
		if name == "" {
			return nil, errors.New("preset with empty name")
		}
		b, err := entry.Parse(c.Presets[name])
		if err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}
		presets[name] = b
	}
	return presets, nil
}
