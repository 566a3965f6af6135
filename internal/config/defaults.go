package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "patmaint"
	DefaultDBUser     = "patmaint"
	DefaultDBMaxConns = 25

	DefaultMigrationPath = "migrations"

	DefaultRedisDialTimeout = 5 * time.Second
	DefaultReportTTL        = 5 * time.Minute
	DefaultRedisKeyPrefix   = "patmaint"

	DefaultFeeCurrency     = "USD"
	DefaultExpiryTermYears = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// defaultFeeTiers is the standard maintenance-fee schedule: the year offsets
// after grant at which a fee falls due and the amount charged, in cents.
func defaultFeeTiers() []FeeTierConfig {
	return []FeeTierConfig{
		{OffsetYears: 3, AmountCents: 215000},
		{OffsetYears: 7, AmountCents: 404000},
		{OffsetYears: 11, AmountCents: 828000},
	}
}

// ApplyDefaults fills every zero-value field in cfg with the platform
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.  It must run after unmarshalling and
// before Validate so that optional-but-defaulted fields are never seen as
// missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultMigrationPath
	}

	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.ReportTTL == 0 {
		cfg.Redis.ReportTTL = DefaultReportTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if len(cfg.Pipeline.FeeTiers) == 0 {
		cfg.Pipeline.FeeTiers = defaultFeeTiers()
	}
	if cfg.Pipeline.FeeCurrency == "" {
		cfg.Pipeline.FeeCurrency = DefaultFeeCurrency
	}
	if cfg.Pipeline.ExpiryTermYears == 0 {
		cfg.Pipeline.ExpiryTermYears = DefaultExpiryTermYears
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
