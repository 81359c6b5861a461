// Package config loads run settings with priority flags > env > file > defaults.
// Flags are applied by the caller after Load returns.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/search"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// EnvPrefix prefixes every environment override
const EnvPrefix = "KEYMAKER_"

// Strategies
const (
	// StrategyVariant picks the search from the startup variant
	StrategyVariant   = "variant"
	StrategyBacktrack = "backtrack"
	StrategyAStar     = "astar"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds everything a run can be tuned with
type Config struct {
	Strategy    string  `yaml:"strategy"`
	LogLevel    string  `yaml:"log_level"`
	Trace       bool    `yaml:"trace"`
	Color       string  `yaml:"color"`
	Language    string  `yaml:"language"`
	MetricsFile string  `yaml:"metrics_file"`
	Planner     Planner `yaml:"planner"`
}

// Planner tunes the incremental A* planner
type Planner struct {
	StepPolicy          string `yaml:"step_policy"`
	MaxRounds           int    `yaml:"max_rounds"`
	DissipateNearAgents bool   `yaml:"dissipate_near_agents"`
}

// LookupFunc reads an environment variable
type LookupFunc func(key string) (string, bool)

// Default returns the built-in settings
func Default() Config {
	return Config{
		Strategy: StrategyVariant,
		LogLevel: "warn",
		Color:    ColorAuto,
		Language: "en",
		Planner: Planner{
			StepPolicy: search.SnapToGoal.String(),
			MaxRounds:  4 * world.Size * world.Size,
		},
	}
}

// Load merges defaults, the YAML file at path (skipped when path is empty)
// and the environment, then validates the result.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, name, v)
		}
		*dst = b
		return nil
	}

	str("STRATEGY", &c.Strategy)
	str("LOG_LEVEL", &c.LogLevel)
	str("COLOR", &c.Color)
	str("LANGUAGE", &c.Language)
	str("METRICS_FILE", &c.MetricsFile)
	str("STEP_POLICY", &c.Planner.StepPolicy)

	if err := boolean("TRACE", &c.Trace); err != nil {
		return err
	}
	if err := boolean("DISSIPATE_NEAR_AGENTS", &c.Planner.DissipateNearAgents); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "MAX_ROUNDS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_ROUNDS=%q", ErrInvalid, EnvPrefix, v)
		}
		c.Planner.MaxRounds = n
	}
	return nil
}

// Validate rejects unknown names and non-positive budgets
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyVariant, StrategyBacktrack, StrategyAStar:
	default:
		return fmt.Errorf("%w: strategy %q", ErrInvalid, c.Strategy)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color %q", ErrInvalid, c.Color)
	}
	if c.Language == "" {
		return fmt.Errorf("%w: language is empty", ErrInvalid)
	}
	if _, err := search.ParseStepPolicy(c.Planner.StepPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Planner.MaxRounds < 1 {
		return fmt.Errorf("%w: planner.max_rounds must be >= 1, got %d", ErrInvalid, c.Planner.MaxRounds)
	}
	return nil
}

// StepPolicy returns the parsed planner step policy
func (c Config) StepPolicy() search.StepPolicy {
	p, _ := search.ParseStepPolicy(c.Planner.StepPolicy)
	return p
}

// ParseLevel maps a level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
}

// Logger builds a text logger writing to w at the configured level
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
