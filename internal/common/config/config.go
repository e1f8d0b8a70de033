// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Session SessionConfig `mapstructure:"session"`
	GenAI   GenAIConfig   `mapstructure:"genai"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig points at the static knowledge-base files loaded once at boot.
type CatalogConfig struct {
	ProductsPath string `mapstructure:"products_path"`
	ArticlePath  string `mapstructure:"article_path"`
}

// SessionConfig holds settings for the cookie-backed session store.
type SessionConfig struct {
	SecretKey  string      `mapstructure:"secret_key"`
	CookieName string      `mapstructure:"cookie_name"`
	TTL        int         `mapstructure:"ttl"` // seconds
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GenAIConfig holds settings for the external generative model API.
type GenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
	Temperature     float64 `mapstructure:"temperature"`
	TopP            float64 `mapstructure:"top_p"`
	TopK            float64 `mapstructure:"top_k"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Validate checks critical configuration fields.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Catalog.ProductsPath == "" {
		return fmt.Errorf("catalog.products_path is required")
	}
	if c.Catalog.ArticlePath == "" {
		return fmt.Errorf("catalog.article_path is required")
	}
	if c.Session.Redis.Address == "" {
		return fmt.Errorf("session.redis.address is required")
	}
	if c.Session.SecretKey == "" {
		return fmt.Errorf("session.secret_key is required")
	}
	if c.GenAI.APIKey == "" {
		return fmt.Errorf("genai.api_key is required")
	}
	return nil
}
