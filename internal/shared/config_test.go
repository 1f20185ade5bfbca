package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Storage.Backend != "sqlite" {
			t.Errorf("expected storage backend sqlite, got %s", config.Storage.Backend)
		}

		if config.Storage.Key != "@memory_photos" {
			t.Errorf("expected storage key @memory_photos, got %s", config.Storage.Key)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if !config.Notifications.Enabled {
			t.Error("expected notifications to be enabled by default")
		}

		if config.Services.RateLimit != 1.0 {
			t.Errorf("expected services rate limit 1.0, got %v", config.Services.RateLimit)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[storage]
backend = "redis"
key = "@custom"

[redis]
addr = "10.0.0.5:6380"
db = 2

[notifications]
enabled = false
reminder_delay_seconds = 300

[server]
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Storage.Backend != "redis" {
			t.Errorf("expected backend redis, got %s", config.Storage.Backend)
		}

		if config.Redis.Addr != "10.0.0.5:6380" || config.Redis.DB != 2 {
			t.Errorf("unexpected redis config: %+v", config.Redis)
		}

		if config.Notifications.Enabled || config.Notifications.ReminderDelaySeconds != 300 {
			t.Errorf("unexpected notifications config: %+v", config.Notifications)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Storage.PhotoDir != DefaultConfig().Storage.PhotoDir {
			t.Errorf("expected unset photo_dir to keep default, got %s", config.Storage.PhotoDir)
		}
	})

	t.Run("LoadConfig rejects unknown backend", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[storage]\nbackend = \"etcd\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
