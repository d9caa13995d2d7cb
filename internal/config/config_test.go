package config

import (
	"testing"

	"github.com/matryer/is"
)

func validConfig() *Config {
	return &Config{
		Database:  DatabaseConfig{AppDB: PostgresConfig{Host: "localhost"}},
		Keycloak:  KeycloakConfig{URL: "http://keycloak:8080"},
		FileStore: FileStoreConfig{BasePath: "./data", MaxFileSize: 1024},
		Security:  SecurityConfig{PassphraseKey: "0123456789abcdef"},
	}
}

func TestValidateConfig(t *testing.T) {
	is := is.New(t)
	is.NoErr(validateConfig(validConfig()))

	cfg := validConfig()
	cfg.Database.AppDB.Host = ""
	is.True(validateConfig(cfg) != nil)

	cfg = validConfig()
	cfg.Keycloak.URL = ""
	is.True(validateConfig(cfg) != nil)

	cfg = validConfig()
	cfg.Security.PassphraseKey = "short"
	is.True(validateConfig(cfg) != nil)

	cfg = validConfig()
	cfg.FileStore.MaxFileSize = 0
	is.True(validateConfig(cfg) != nil)
}

func TestLoadFromEnvironment(t *testing.T) {
	is := is.New(t)
	t.Setenv("RA_DATABASE__POSTGRES_APP__HOST", "db")
	t.Setenv("RA_KEYCLOAK__URL", "http://keycloak")
	t.Setenv("RA_SECURITY__PASSPHRASE_KEY", "0123456789abcdef0123")
	t.Setenv("RA_SERVER__PORT", "9090")

	cfg, err := Load()
	is.NoErr(err)
	is.Equal(cfg.Database.AppDB.Host, "db")
	is.Equal(cfg.Database.AppDB.Port, 5432)
	is.Equal(cfg.Server.Port, 9090)
	is.Equal(cfg.Redis.Stream, "ra:events")
	is.Equal(cfg.Keycloak.RequiredRole, "user")
}
