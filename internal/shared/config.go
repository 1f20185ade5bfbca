package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Storage       StorageConfig       `toml:"storage"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	Media         MediaConfig         `toml:"media"`
	Notifications NotificationsConfig `toml:"notifications"`
	Services      ServicesConfig      `toml:"services"`
	Auth          AuthConfig          `toml:"auth"`
	Server        ServerConfig        `toml:"server"`
	Log           LogConfig           `toml:"log"`
}

// StorageConfig selects the key-value backend and the private photo directory.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Key      string `toml:"key"`
	PhotoDir string `toml:"photo_dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains Redis connection settings for the redis storage backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MediaConfig points at the public media library directory.
type MediaConfig struct {
	LibraryDir string `toml:"library_dir"`
	Allow      bool   `toml:"allow"`
}

// NotificationsConfig controls capture notifications.
type NotificationsConfig struct {
	Enabled              bool `toml:"enabled"`
	ReminderDelaySeconds int  `toml:"reminder_delay_seconds"`
}

// ServicesConfig contains upstream geocoding and weather endpoints.
type ServicesConfig struct {
	GeocoderURL string  `toml:"geocoder_url"`
	WeatherURL  string  `toml:"weather_url"`
	UserAgent   string  `toml:"user_agent"`
	RateLimit   float64 `toml:"rate_limit"`
}

// AuthConfig contains the email/password identity backend settings.
type AuthConfig struct {
	APIKey      string `toml:"api_key"`
	IdentityURL string `toml:"identity_url"`
	TokenURL    string `toml:"token_url"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.Storage.Key == "" {
		return fmt.Errorf("%w: storage key is empty", ErrInvalidConfig)
	}

	if c.Notifications.ReminderDelaySeconds < 0 {
		return fmt.Errorf("%w: reminder_delay_seconds must not be negative", ErrInvalidConfig)
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
