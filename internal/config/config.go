// Package config defines all configuration structures for the patmaint
// pipeline.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP reporting-server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds the report-cache connection parameters.  The cache is
// optional; an empty Addr disables it and reports are always computed from
// the database.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	ReportTTL   time.Duration `mapstructure:"report_ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// FeeTierConfig is one entry of the maintenance-fee schedule: a year offset
// from the grant year and the fee amount in minor currency units (cents).
type FeeTierConfig struct {
	OffsetYears int   `mapstructure:"offset_years"`
	AmountCents int64 `mapstructure:"amount_cents"`
}

// PipelineConfig holds the derivation rule set.  The fee schedule is
// deliberately configuration data rather than inlined literals; a real
// deployment would vary it by jurisdiction and year.
type PipelineConfig struct {
	FeeTiers        []FeeTierConfig `mapstructure:"fee_tiers"`
	FeeCurrency     string          `mapstructure:"fee_currency"`
	ExpiryTermYears int             `mapstructure:"expiry_term_years"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// Config is the root configuration structure.  Every infrastructure
// component and application service reads its settings from the relevant
// sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Pipeline.FeeTiers) == 0 {
		return fmt.Errorf("config: pipeline.fee_tiers must contain at least one tier")
	}
	seen := make(map[int]bool, len(c.Pipeline.FeeTiers))
	for i, tier := range c.Pipeline.FeeTiers {
		if tier.OffsetYears < 1 {
			return fmt.Errorf("config: pipeline.fee_tiers[%d].offset_years must be >= 1, got %d", i, tier.OffsetYears)
		}
		if tier.AmountCents < 0 {
			return fmt.Errorf("config: pipeline.fee_tiers[%d].amount_cents must be >= 0, got %d", i, tier.AmountCents)
		}
		if seen[tier.OffsetYears] {
			return fmt.Errorf("config: pipeline.fee_tiers has duplicate offset %d", tier.OffsetYears)
		}
		seen[tier.OffsetYears] = true
	}
	if c.Pipeline.FeeCurrency == "" {
		return fmt.Errorf("config: pipeline.fee_currency is required")
	}
	if c.Pipeline.ExpiryTermYears < 1 {
		return fmt.Errorf("config: pipeline.expiry_term_years must be >= 1, got %d", c.Pipeline.ExpiryTermYears)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
