package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPHost              string        `mapstructure:"HTTP_HOST" validate:"required"`
	HTTPPort              string        `mapstructure:"HTTP_PORT" validate:"required,numeric"`
	HTTPReadHeaderTimeout time.Duration `mapstructure:"HTTP_READ_HEADER_TIMEOUT" validate:"gt=0"`
	HTTPShutdownTimeout   time.Duration `mapstructure:"HTTP_SHUTDOWN_TIMEOUT" validate:"gt=0"`
	LivenessEndpoint      string        `mapstructure:"LIVENESS_ENDPOINT" validate:"required,startswith=/"`
	// The optimizer branches on every tier, so the cap stays small.
	AllocationTierLimit   int           `mapstructure:"ALLOCATION_TIER_LIMIT" validate:"gte=1,lte=6"`
	PricingTaxRate        float64       `mapstructure:"PRICING_TAX_RATE" validate:"gte=0,lt=1"`
	SeedDays              int           `mapstructure:"SEED_DAYS" validate:"gte=1"`
	DefaultGuests         int           `mapstructure:"DEFAULT_GUESTS" validate:"gte=1"`
	SessionIdleTTL        time.Duration `mapstructure:"SESSION_IDLE_TTL" validate:"gt=0"`
	SessionSweepInterval  time.Duration `mapstructure:"SESSION_SWEEP_INTERVAL" validate:"gt=0"`
}

var defaults = map[string]any{
	"HTTP_HOST":                "localhost",
	"HTTP_PORT":                "8092",
	"HTTP_READ_HEADER_TIMEOUT": "20s",
	"HTTP_SHUTDOWN_TIMEOUT":    "4s",
	"LIVENESS_ENDPOINT":        "/liveness",
	"ALLOCATION_TIER_LIMIT":    3,
	"PRICING_TAX_RATE":         0.18,
	"SEED_DAYS":                90,
	"DEFAULT_GUESTS":           2,
	"SESSION_IDLE_TTL":         "30m",
	"SESSION_SWEEP_INTERVAL":   "1m",
}

// Load reads an optional .env file, then config.env from dir, then the
// process environment. Later sources win.
func Load(dir string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(conf); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return conf, nil
}
