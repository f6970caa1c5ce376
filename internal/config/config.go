package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup. Values come from
// config.yaml when present, overridden by GNEX_-prefixed environment
// variables (e.g. GNEX_DATABASE_HOST).
type Config struct {
	Server struct {
		Port        string
		CORSOrigins []string
	}
	Database struct {
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SSLMode    string
		SchemaPath string
	}
	AI struct {
		APIKey  string
		Model   string
		BaseURL string
	}
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "gnexgym_user")
	v.SetDefault("database.password", "gnexgym_password")
	v.SetDefault("database.name", "gnexgym_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema_path", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")

	v.SetEnvPrefix("GNEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine, defaults plus env cover everything.
	}

	cfg := &Config{}
	cfg.Server.Port = v.GetString("server.port")
	cfg.Server.CORSOrigins = v.GetStringSlice("server.cors_origins")
	cfg.Database.Host = v.GetString("database.host")
	cfg.Database.Port = v.GetString("database.port")
	cfg.Database.User = v.GetString("database.user")
	cfg.Database.Password = v.GetString("database.password")
	cfg.Database.Name = v.GetString("database.name")
	cfg.Database.SSLMode = v.GetString("database.sslmode")
	cfg.Database.SchemaPath = v.GetString("database.schema_path")
	cfg.AI.APIKey = v.GetString("ai.api_key")
	cfg.AI.Model = v.GetString("ai.model")
	cfg.AI.BaseURL = v.GetString("ai.base_url")
	return cfg, nil
}
