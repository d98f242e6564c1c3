package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	AuthIssuer   string `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL  string `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience string `mapstructure:"AUTH_AUDIENCE"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Alert distribution knobs. Suppression bounds the dedup window for
	// repeated critical vitals alerts; TTL is the default lifetime of a
	// critical alert when the caller supplies no expiry; a sweep interval
	// of zero disables the background expiry sweep entirely.
	AlertSuppressionMinutes int `mapstructure:"ALERT_SUPPRESSION_MINUTES"`
	AlertTTLMinutes         int `mapstructure:"ALERT_TTL_MINUTES"`
	AlertSweepMinutes       int `mapstructure:"ALERT_SWEEP_MINUTES"`

	// Refund tiers for approved emergency cancellations. A paid appointment
	// more than REFUND_FULL_HOURS away refunds in full; more than
	// REFUND_PARTIAL_HOURS away refunds REFUND_PARTIAL_PCT percent;
	// anything closer refunds nothing.
	RefundFullHours    int     `mapstructure:"REFUND_FULL_HOURS"`
	RefundPartialHours int     `mapstructure:"REFUND_PARTIAL_HOURS"`
	RefundPartialPct   float64 `mapstructure:"REFUND_PARTIAL_PCT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("ALERT_SUPPRESSION_MINUTES", 15)
	v.SetDefault("ALERT_TTL_MINUTES", 60)
	v.SetDefault("ALERT_SWEEP_MINUTES", 0)
	v.SetDefault("REFUND_FULL_HOURS", 48)
	v.SetDefault("REFUND_PARTIAL_HOURS", 12)
	v.SetDefault("REFUND_PARTIAL_PCT", 50)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("ALERT_SUPPRESSION_MINUTES")
	v.BindEnv("ALERT_TTL_MINUTES")
	v.BindEnv("ALERT_SWEEP_MINUTES")
	v.BindEnv("REFUND_FULL_HOURS")
	v.BindEnv("REFUND_PARTIAL_HOURS")
	v.BindEnv("REFUND_PARTIAL_PCT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SuppressionWindow returns the alert dedup window as a duration.
func (c *Config) SuppressionWindow() time.Duration {
	return time.Duration(c.AlertSuppressionMinutes) * time.Minute
}

// AlertTTL returns the default critical-alert lifetime as a duration.
func (c *Config) AlertTTL() time.Duration {
	return time.Duration(c.AlertTTLMinutes) * time.Minute
}

// SweepInterval returns the expiry sweep interval; zero disables the sweep.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.AlertSweepMinutes) * time.Minute
}

// Validate checks that the configuration is safe to run. Production requires
// a real JWT issuer; the refund tiers must describe a coherent policy.
func (c *Config) Validate() error {
	if c.IsProduction() && c.AuthIssuer == "" {
		return fmt.Errorf("AUTH_ISSUER is required in production; " +
			"refusing to start without authentication configuration")
	}
	if c.AlertSuppressionMinutes < 0 {
		return fmt.Errorf("ALERT_SUPPRESSION_MINUTES must not be negative, got %d", c.AlertSuppressionMinutes)
	}
	if c.AlertTTLMinutes <= 0 {
		return fmt.Errorf("ALERT_TTL_MINUTES must be positive, got %d", c.AlertTTLMinutes)
	}
	if c.RefundPartialPct < 0 || c.RefundPartialPct > 100 {
		return fmt.Errorf("REFUND_PARTIAL_PCT must be in [0,100], got %v", c.RefundPartialPct)
	}
	if c.RefundFullHours < c.RefundPartialHours {
		return fmt.Errorf("REFUND_FULL_HOURS (%d) must not be below REFUND_PARTIAL_HOURS (%d)",
			c.RefundFullHours, c.RefundPartialHours)
	}
	return nil
}
