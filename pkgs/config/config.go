// Package config loads the Yahoo Mail account configuration from
// environment variables (YAHOO_ prefix) and an optional YAML file.
// Environment values override file values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Endpoint holds host/port for one protocol.
type Endpoint struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config holds the account and connection configuration.
//
// One of AppPassword or AccessToken must be set. AccessToken is an
// OAuth2 bearer token issued elsewhere; this server only consumes it.
type Config struct {
	Email       string `mapstructure:"email"`
	AppPassword string `mapstructure:"app_password"`
	AccessToken string `mapstructure:"access_token"`

	IMAP Endpoint `mapstructure:"imap"`
	SMTP Endpoint `mapstructure:"smtp"`

	DialTimeoutSec int `mapstructure:"dial_timeout_sec"`
}

// DialTimeout returns the configured session-establishment ceiling.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSec) * time.Second
}

// Load reads configuration from the environment and, when path is
// non-empty, from a YAML file. A missing file at an explicit path is an
// error; env-only operation needs no file at all.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YAHOO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly for AutomaticEnv
	// to surface them through Unmarshal.
	for _, key := range []string{"email", "app_password", "access_token"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("imap.host", "imap.mail.yahoo.com")
	v.SetDefault("imap.port", 993)
	v.SetDefault("smtp.host", "smtp.mail.yahoo.com")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("dial_timeout_sec", 30)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("email is required (set YAHOO_EMAIL)")
	}
	if c.AppPassword == "" && c.AccessToken == "" {
		return fmt.Errorf("credentials are required (set YAHOO_APP_PASSWORD or YAHOO_ACCESS_TOKEN)")
	}
	if c.IMAP.Host == "" || c.IMAP.Port == 0 {
		return fmt.Errorf("IMAP endpoint is incomplete")
	}
	return nil
}
