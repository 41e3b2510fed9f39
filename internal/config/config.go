package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultFPS          = 60
	DefaultTheme        = "electric"
	DefaultAddr         = ":5000"
	DefaultLogLevel     = "info"
	DefaultBenchFrames  = 600
	DefaultBenchSeeds   = 4
	DefaultReadTimeout  = 5 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	FPS      int            `yaml:"fps"`
	Seed     int64          `yaml:"seed"`
	Theme    string         `yaml:"theme"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Bench    BenchConfig    `yaml:"bench"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type BenchConfig struct {
	Frames int `yaml:"frames"`
	Seeds  int `yaml:"seeds"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		FPS:      DefaultFPS,
		Theme:    DefaultTheme,
		Log:      LogConfig{Level: DefaultLogLevel},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		Bench: BenchConfig{Frames: DefaultBenchFrames, Seeds: DefaultBenchSeeds},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values no component can run with. Viewport sizes are not
// checked here; the renderer clamps them.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if GetPreset(c.Theme) == nil {
		return fmt.Errorf("unknown theme %q (available: %v)", c.Theme, ListPresets())
	}
	if c.Bench.Frames <= 0 {
		return fmt.Errorf("bench frames must be positive, got %d", c.Bench.Frames)
	}
	if c.Bench.Seeds <= 0 {
		return fmt.Errorf("bench seeds must be positive, got %d", c.Bench.Seeds)
	}
	return nil
}

// FrameInterval is the time between frames at the configured rate.
func (c *Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.FPS)
}

// SeedOr returns the configured seed, or fallback when none is set.
func (c *Config) SeedOr(fallback int64) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return fallback
}
