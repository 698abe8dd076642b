package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/engine"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Addr           string   `env:"ADDR" envDefault:":3001"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"LOG_FORMAT" envDefault:"json"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	DatabaseURL    string   `env:"DATABASE_URL"`

	TickRate           int           `env:"TICK_RATE" envDefault:"20"`
	MatchDuration      time.Duration `env:"MATCH_DURATION" envDefault:"180s"`
	CookTime           time.Duration `env:"COOK_TIME" envDefault:"5s"`
	BurnTime           time.Duration `env:"BURN_TIME" envDefault:"8s"`
	OrderSpawnInterval time.Duration `env:"ORDER_SPAWN_INTERVAL" envDefault:"15s"`
	MaxOrders          int           `env:"MAX_ORDERS" envDefault:"4"`
	WinScore           int           `env:"WIN_SCORE" envDefault:"50"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"60s"`
	MaxSessionAge time.Duration `env:"MAX_SESSION_AGE" envDefault:"2h"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the given .env files, if they exist, into the process
// environment and then parses Config from it. Variables already set win
// over file values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var err error
	if c.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("TICK_RATE must be positive, got %d", c.TickRate))
	}
	if c.MaxOrders <= 0 {
		err = multierr.Append(err, fmt.Errorf("MAX_ORDERS must be positive, got %d", c.MaxOrders))
	}
	for name, d := range map[string]time.Duration{
		"MATCH_DURATION":       c.MatchDuration,
		"COOK_TIME":            c.CookTime,
		"BURN_TIME":            c.BurnTime,
		"ORDER_SPAWN_INTERVAL": c.OrderSpawnInterval,
		"SWEEP_INTERVAL":       c.SweepInterval,
		"MAX_SESSION_AGE":      c.MaxSessionAge,
	} {
		if d <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Rules derives the match tunables; anything not configurable keeps its
// default.
func (c Config) Rules() engine.Rules {
	r := engine.DefaultRules()
	r.TickRate = c.TickRate
	r.MatchDuration = c.MatchDuration
	r.CookTime = c.CookTime
	r.BurnTime = c.BurnTime
	r.OrderSpawnInterval = c.OrderSpawnInterval
	r.MaxOrders = c.MaxOrders
	r.WinScore = c.WinScore
	return r
}
