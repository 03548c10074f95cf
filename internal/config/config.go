package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	RefData  RefData  `mapstructure:"refdata"`
	Booking  Booking  `mapstructure:"booking"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RefData holds the configuration for the reference-data gateway.
// Mode "local" reads reference entities from the service database; "remote"
// fetches them from a reference-data API over HTTP.
type RefData struct {
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	Books          []string `mapstructure:"books"`
	Counterparties []string `mapstructure:"counterparties"`
	Traders        []string `mapstructure:"traders"`
}

// Booking holds the configuration for the trade lifecycle engine.
type Booking struct {
	MaxTradeAgeDays int   `mapstructure:"max_trade_age_days"`
	StartingTradeID int64 `mapstructure:"starting_trade_id"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "trades.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("refdata.mode", "local")
	viper.SetDefault("refdata.rate_limit", 20)      // requests per second
	viper.SetDefault("refdata.rate_limit_burst", 5) // burst size
	viper.SetDefault("booking.max_trade_age_days", 30)
	viper.SetDefault("booking.starting_trade_id", 100001)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
