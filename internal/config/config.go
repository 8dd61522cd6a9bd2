package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, read once at startup
type Config struct {
	Strapi StrapiConfig `mapstructure:"strapi"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Events EventsConfig `mapstructure:"events"`
}

// StrapiConfig locates the backing content API
type StrapiConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FiltersEncoding string        `mapstructure:"filters_encoding"`
}

// BaseURL is the scheme://host:port prefix for every outbound call.
func (c StrapiConfig) BaseURL() string {
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ServerConfig controls the gateway's own listener
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig selects slog level and handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EventsConfig enables the AMQP call-event stream when AMQPURL is set
type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"exchange"`
}

var envBindings = map[string]string{
	"strapi.host":             "STRAPI_HOST",
	"strapi.port":             "STRAPI_PORT",
	"strapi.timeout":          "STRAPI_TIMEOUT",
	"strapi.filters_encoding": "STRAPI_FILTERS_ENCODING",
	"server.port":             "MCP_PORT",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
	"events.amqp_url":         "AMQP_URL",
	"events.exchange":         "AMQP_EXCHANGE",
}

// Load reads configuration from the environment and, when path is not empty,
// a YAML config file. Environment variables override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("strapi.host", "127.0.0.1")
	v.SetDefault("strapi.port", 1337)
	v.SetDefault("strapi.timeout", "10s")
	v.SetDefault("strapi.filters_encoding", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.exchange", "mcp.tool-calls")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Strapi.FiltersEncoding = strings.ToLower(strings.TrimSpace(cfg.Strapi.FiltersEncoding))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the gateway cannot start with
func (c Config) Validate() error {
	if strings.TrimSpace(c.Strapi.Host) == "" {
		return fmt.Errorf("strapi.host is required")
	}
	if c.Strapi.Port <= 0 || c.Strapi.Port > 65535 {
		return fmt.Errorf("strapi.port out of range: %d", c.Strapi.Port)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Strapi.Timeout <= 0 {
		return fmt.Errorf("strapi.timeout must be positive")
	}
	switch c.Strapi.FiltersEncoding {
	case "json", "brackets":
	default:
		return fmt.Errorf("unsupported strapi.filters_encoding %q", c.Strapi.FiltersEncoding)
	}
	return nil
}
