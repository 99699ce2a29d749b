package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the realtime service.
type Config struct {
	Port         string `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	JWTSecret    string `mapstructure:"jwt_secret"`
	RedisURL     string `mapstructure:"redis_url"`
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	DebugRoutes  bool   `mapstructure:"debug_routes"`
}

// Load reads configuration from an optional config.yaml and environment
// variables prefixed with REALTIME_. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "3001")
	v.SetDefault("environment", "development")
	v.SetDefault("jwt_secret", "your-super-secret-jwt-key-change-in-production")
	v.SetDefault("redis_url", "redis://localhost:6379")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "realtime_events")
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("debug_routes", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("REALTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, everything has a default or env override.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
