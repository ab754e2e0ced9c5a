package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Abs
		KoboStore
		Sync
		Cleanup
	}

	HTTP struct {
		Port int32
		Host string
		// PublicURL is the base URL devices reach the bridge on; it is
		// baked into the download links inside sync responses.
		PublicURL string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Abs struct {
		BaseURL string // e.g. "http://localhost:13378"
		// APIKey is an optional server-wide key for the admin listing
		// endpoints; per-device syncs use each owner's own key.
		APIKey string
	}
	KoboStore struct {
		BaseURL string
		Timeout time.Duration
	}
	Sync struct {
		ItemLimit int
	}
	Cleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 4 * * *" = daily at 04:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8686)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("public_url", "http://localhost:8686")
	v.SetDefault("abs_base_url", "")
	v.SetDefault("abs_api_key", "")
	v.SetDefault("kobo_store_url", DefaultKoboStoreURL)
	v.SetDefault("kobo_store_timeout", "30s")
	v.SetDefault("sync_item_limit", DefaultSyncItemLimit)
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 4 * * *")

	return &Config{
		HTTP: HTTP{
			Port:      v.GetInt32("PORT"),
			Host:      v.GetString("HOST"),
			PublicURL: v.GetString("PUBLIC_URL"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Abs: Abs{
			BaseURL: v.GetString("ABS_BASE_URL"),
			APIKey:  v.GetString("ABS_API_KEY"),
		},
		KoboStore: KoboStore{
			BaseURL: v.GetString("KOBO_STORE_URL"),
			Timeout: v.GetDuration("KOBO_STORE_TIMEOUT"),
		},
		Sync: Sync{
			ItemLimit: v.GetInt("SYNC_ITEM_LIMIT"),
		},
		Cleanup: Cleanup{
			Enabled:  v.GetBool("CLEANUP_ENABLED"),
			Schedule: v.GetString("CLEANUP_SCHEDULE"),
		},
	}
}
