package config

import (
	"fmt"
	"strings"
	"sync"
)

// Config holds curve construction, solver, risk and ambient parameters.
type Config struct {
	Curve    CurveConfig    `mapstructure:"curve"`
	Solver   SolverConfig   `mapstructure:"solver"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

type CurveConfig struct {
	// Horizon is the last year fraction of the bootstrap fine grid.
	Horizon float64 `mapstructure:"horizon"`

	// BumpSize is the absolute rate shift used for delta (0.0001 == 1bp).
	BumpSize float64 `mapstructure:"bump_size"`
}

type SolverConfig struct {
	// Backend selects the per-grid-point minimizer: "gonum" or "newton".
	Backend string `mapstructure:"backend"`

	// Tolerance is the largest accepted par residual |price - 1| after a solve.
	Tolerance float64 `mapstructure:"tolerance"`

	// GradientThreshold stops the minimizer once |f'(df)| falls below it.
	GradientThreshold float64 `mapstructure:"gradient_threshold"`

	// MaxIterations bounds each per-point solve so a bad curve fails fast.
	MaxIterations int `mapstructure:"max_iterations"`
}

type RiskConfig struct {
	// Workers bounds concurrent bump-and-reprice jobs in a delta ladder or batch.
	Workers int `mapstructure:"workers"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DatabaseConfig struct {
	// DSN enables the Postgres quote feed when set.
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Curve: CurveConfig{
		Horizon:  50,
		BumpSize: 0.0001,
	},
	Solver: SolverConfig{
		Backend:           "gonum",
		Tolerance:         1e-10,
		GradientThreshold: 1e-14,
		MaxIterations:     100,
	},
	Risk: RiskConfig{
		Workers: 4,
	},
	Logging: LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	},
	Database: DatabaseConfig{
		Table: "curve_quotes",
	},
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Curve.Horizon <= 0 {
		return fmt.Errorf("config: curve.horizon must be positive, got %g", c.Curve.Horizon)
	}
	if c.Curve.BumpSize <= 0 {
		return fmt.Errorf("config: curve.bump_size must be positive, got %g", c.Curve.BumpSize)
	}
	switch strings.ToLower(c.Solver.Backend) {
	case "gonum", "newton":
	default:
		return fmt.Errorf("config: unknown solver.backend %q", c.Solver.Backend)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("config: solver.tolerance must be positive, got %g", c.Solver.Tolerance)
	}
	if c.Solver.GradientThreshold <= 0 {
		return fmt.Errorf("config: solver.gradient_threshold must be positive, got %g", c.Solver.GradientThreshold)
	}
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("config: solver.max_iterations must be positive, got %d", c.Solver.MaxIterations)
	}
	if c.Risk.Workers <= 0 {
		return fmt.Errorf("config: risk.workers must be positive, got %d", c.Risk.Workers)
	}
	return nil
}
