package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/ensiwire/internal/logging"
	"github.com/danmuck/ensiwire/internal/protocol/frame"
	"github.com/danmuck/ensiwire/internal/protocol/shape"
)

// fileConfig is the wirectl.toml key mapping.
type fileConfig struct {
	LogLevel        string `toml:"log_level"`
	LogJSON         bool   `toml:"log_json"`
	LogTimestamp    bool   `toml:"log_timestamp"`
	Magic           uint32 `toml:"magic"`
	MaxPayloadBytes uint64 `toml:"max_payload_bytes"`

	Payloads map[string]string `toml:"payloads"`
}

// Config is the resolved wirectl configuration.
type Config struct {
	LogLevel     string
	LogJSON      bool
	LogTimestamp bool
	Frame        frame.Limits

	// Payloads maps frame message types to shape expressions.
	Payloads map[string]string
}

func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		LogTimestamp: true,
		Frame:        frame.DefaultLimits(),
		Payloads:     map[string]string{},
	}
}

// Load overlays the keys defined in path on DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_json") {
		cfg.LogJSON = raw.LogJSON
	}
	if meta.IsDefined("log_timestamp") {
		cfg.LogTimestamp = raw.LogTimestamp
	}
	if meta.IsDefined("magic") {
		cfg.Frame.Magic = raw.Magic
	}
	if meta.IsDefined("max_payload_bytes") {
		cfg.Frame.MaxPayloadBytes = raw.MaxPayloadBytes
	}

	for name, expr := range raw.Payloads {
		cfg.Payloads[name] = strings.TrimSpace(expr)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	if cfg.Frame.MaxPayloadBytes == 0 {
		return fmt.Errorf("max_payload_bytes must be positive")
	}
	if _, err := cfg.Registry(); err != nil {
		return err
	}
	return nil
}

// LoggingConfig maps cfg onto a runtime logging setup.
func (c Config) LoggingConfig() logging.Config {
	out := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(c.LogLevel); ok {
		out.Level = lvl
	}
	out.JSON = c.LogJSON
	out.Timestamp = c.LogTimestamp
	return out
}

// Registry builds the payload shape registry for frame decoding.
func (c Config) Registry() (*shape.Registry, error) {
	return shape.RegistryFrom(c.Payloads)
}
