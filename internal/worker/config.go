// Package worker provides background job processing for Guichet.
package worker

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the worker configuration. Values are read from a config file
// when one exists and from GUICHET_* environment variables, which win.
type Config struct {
	// ProjectID is the Google Cloud project hosting the Pub/Sub resources.
	ProjectID string `mapstructure:"project_id"`

	// SubscriptionName is the subscription the worker consumes jobs from.
	SubscriptionName string `mapstructure:"subscription_name"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `mapstructure:"database_url"`

	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// RetentionConfig holds the retention thresholds.
type RetentionConfig struct {
	// ArchiveAge is how old a claim must be before the archive job moves it
	// to archived status.
	ArchiveAge time.Duration `mapstructure:"archive_age"`

	// PurgeAge is how long an answered claim is kept before the purge job
	// removes it.
	PurgeAge time.Duration `mapstructure:"purge_age"`

	// FileSweepDays is the default age in days for the file sweep job when
	// a job message carries no explicit value.
	FileSweepDays int `mapstructure:"file_sweep_days"`
}

// LoadConfig reads the worker configuration from the given path (or the
// working directory when empty) and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("worker")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("GUICHET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys need a default for AutomaticEnv to surface them during Unmarshal.
	v.SetDefault("project_id", "")
	v.SetDefault("database_url", "")
	v.SetDefault("subscription_name", "guichet-jobs-sub")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@guichet.city")
	v.SetDefault("smtp.from_name", "Guichet")
	v.SetDefault("retention.archive_age", 3*30*24*time.Hour)
	v.SetDefault("retention.purge_age", 30*24*time.Hour)
	v.SetDefault("retention.file_sweep_days", 30)

	if err := v.ReadInConfig(); err != nil {
		// A config file is optional; the environment can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	return &cfg, nil
}
