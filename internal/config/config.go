package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

var ErrEmptyToken = errors.New("error getting FW_TELEGRAM_TOKEN: variable not specified or contains an empty string")

type Config struct {
	Env          string        // Env is the current environment: local, dev, prod.
	PortalURL    string        // PortalURL is the schedule page of the work-order portal.
	StoragePath  string        // StoragePath is the sqlite database file.
	PollInterval time.Duration // PollInterval is how often the schedule is re-scraped.
	Tg           Telegram
}

type Telegram struct {
	Token   string        // Token is an unique telgram bot token.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
func MustLoad() *Config {
	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("FW")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("TELEGRAM_TIMEOUT", "15s")
	viper.SetDefault("POLL_INTERVAL", "15m")
	viper.SetDefault("STORAGE_PATH", "fossawatch.db")

	if viper.GetString("TELEGRAM_TOKEN") == "" {
		panic(ErrEmptyToken)
	}

	return &Config{
		Env:          viper.GetString("ENV"),
		PortalURL:    viper.GetString("PORTAL_URL"),
		StoragePath:  viper.GetString("STORAGE_PATH"),
		PollInterval: viper.GetDuration("POLL_INTERVAL"),
		Tg: Telegram{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			Timeout: viper.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}
}
