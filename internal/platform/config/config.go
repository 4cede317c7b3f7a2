package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the server.
type Config struct {
	Addr            string        `envconfig:"APP_ADDR" default:":8080"`
	Environment     string        `envconfig:"APP_ENV" default:"development"`
	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	RunMigrations bool `envconfig:"RUN_MIGRATIONS" default:"true"`
	RunSeed       bool `envconfig:"RUN_SEED" default:"true"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL" default:""`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:""`

	RateLimitPerMinute int   `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	MaxBodyBytes       int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	// BusinessTimezone anchors every schedule boundary and date-only
	// comparison, regardless of where the scanning client runs.
	BusinessTimezone string `envconfig:"BUSINESS_TIMEZONE" default:"Asia/Manila"`

	GracePeriodMinutes int           `envconfig:"GRACE_PERIOD_MINUTES" default:"15"`
	BreakDwellMinutes  int           `envconfig:"BREAK_DWELL_MINUTES" default:"60"`
	ReopenWindow       time.Duration `envconfig:"REOPEN_WINDOW" default:"3h"`
	PerMinuteRate      float64       `envconfig:"PER_MINUTE_RATE" default:"1.60"`
	ScheduledBreak     time.Duration `envconfig:"SCHEDULED_BREAK" default:"1h"`

	DayOffStartingBalance int `envconfig:"DAY_OFF_STARTING_BALANCE" default:"3"`
	MonthlyDayOffCap      int `envconfig:"MONTHLY_DAY_OFF_CAP" default:"3"`
	SILEntitlementDays    int `envconfig:"SIL_ENTITLEMENT_DAYS" default:"5"`

	// PositionBonuses maps a position name to its birth-month bonus amount,
	// e.g. "cashier:500,manager:1000".
	PositionBonuses map[string]float64 `envconfig:"POSITION_BONUSES" default:""`

	// SILSweepSpec is the cron expression for the nightly SIL anniversary sweep.
	SILSweepSpec string `envconfig:"SIL_SWEEP_SPEC" default:"0 2 * * *"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.GracePeriodMinutes < 0 {
		return errors.New("GRACE_PERIOD_MINUTES must not be negative")
	}
	if c.BreakDwellMinutes <= 0 {
		return errors.New("BREAK_DWELL_MINUTES must be positive")
	}
	if c.ReopenWindow <= 0 {
		return errors.New("REOPEN_WINDOW must be positive")
	}
	if c.PerMinuteRate < 0 {
		return errors.New("PER_MINUTE_RATE must not be negative")
	}
	if c.MonthlyDayOffCap <= 0 {
		return errors.New("MONTHLY_DAY_OFF_CAP must be positive")
	}
	if c.SILEntitlementDays <= 0 {
		return errors.New("SIL_ENTITLEMENT_DAYS must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return errors.New("MAX_BODY_BYTES must be at least 1024")
	}
	for position, amount := range c.PositionBonuses {
		if amount < 0 {
			return fmt.Errorf("POSITION_BONUSES entry %q must not be negative", position)
		}
	}
	if c.Environment == "production" {
		if c.RunSeed && c.SeedAdminPassword == "" {
			return errors.New("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
