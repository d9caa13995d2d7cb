package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Keycloak   KeycloakConfig
	Redis      RedisConfig
	Monitoring MonitoringConfig
	FileStore  FileStoreConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	AppDB PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type KeycloakConfig struct {
	URL          string `mapstructure:"url"`
	Realm        string `mapstructure:"realm"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RequiredRole string `mapstructure:"required_role"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type FileStoreConfig struct {
	BasePath    string `mapstructure:"base_path"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

// SecurityConfig holds the master secret device passphrases are encrypted with.
type SecurityConfig struct {
	PassphraseKey string `mapstructure:"passphrase_key"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("RA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// keys without a real default are registered so env overrides reach Unmarshal
	for _, key := range []string{
		"server.public_url",
		"database.postgres_app.host", "database.postgres_app.user",
		"database.postgres_app.password", "database.postgres_app.dbname",
		"keycloak.url", "keycloak.realm", "keycloak.client_id", "keycloak.client_secret",
		"redis.host", "redis.password",
		"security.passphrase_key",
	} {
		viper.SetDefault(key, "")
	}

	// Database defaults
	viper.SetDefault("database.postgres_app.port", 5432)
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Keycloak defaults
	viper.SetDefault("keycloak.required_role", "user")

	// Redis defaults
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.stream", "ra:events")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")

	// FileStore defaults
	viper.SetDefault("filestore.base_path", "./data")
	viper.SetDefault("filestore.max_file_size", 10*1024*1024) // 10MB
}

func validateConfig(config *Config) error {
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.Keycloak.URL == "" {
		return fmt.Errorf("keycloak URL is required")
	}
	if len(config.Security.PassphraseKey) < 16 {
		return fmt.Errorf("security passphrase key must be at least 16 characters")
	}
	if config.FileStore.MaxFileSize <= 0 {
		return fmt.Errorf("filestore max file size must be positive")
	}
	return nil
}
