package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BONDRISK_SOLVER_BACKEND.
const EnvPrefix = "BONDRISK"

// Load merges defaults, an optional config file and BONDRISK_* environment
// variables. A missing default config file is not an error; a missing explicit
// path is. The result is validated.
func Load(configPath string) (*Config, error) {
	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("bondrisk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig

	v.SetDefault("curve.horizon", d.Curve.Horizon)
	v.SetDefault("curve.bump_size", d.Curve.BumpSize)

	v.SetDefault("solver.backend", d.Solver.Backend)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.gradient_threshold", d.Solver.GradientThreshold)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)

	v.SetDefault("risk.workers", d.Risk.Workers)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.table", d.Database.Table)
}
