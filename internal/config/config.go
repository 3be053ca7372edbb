package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

type AppConfig struct {
	Port      string `mapstructure:"port" validate:"required,numeric"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	// HTTPTimeout bounds each outbound provider call; SearchTimeout bounds a whole search.
	HTTPTimeout   time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	SearchTimeout time.Duration `mapstructure:"search_timeout" validate:"gt=0"`

	// Nominatim requires an identifying User-Agent.
	UserAgent string `mapstructure:"user_agent" validate:"required"`

	GeocodingURL  string `mapstructure:"geocoding_url" validate:"required,url"`
	NominatimURL  string `mapstructure:"nominatim_url" validate:"required,url"`
	ForecastURL   string `mapstructure:"forecast_url" validate:"required,url"`
	AirQualityURL string `mapstructure:"air_quality_url" validate:"required,url"`

	// GoogleGeocoderAPIKey switches reverse geocoding to Google when set.
	GoogleGeocoderAPIKey string `mapstructure:"google_geocoder_api_key"`

	// In-memory session store limits.
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	MaxSessions   int           `mapstructure:"max_sessions" validate:"gte=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`

	TracingEnabled  bool   `mapstructure:"tracing_enabled"`
	TracingEndpoint string `mapstructure:"tracing_endpoint" validate:"required_if=TracingEnabled true"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

var validate = validator.New()

// Load reads configuration from an optional .env file, an optional
// config.yaml and the environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// PORT → port, HTTP_TIMEOUT → http_timeout
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("search_timeout", "20s")
	v.SetDefault("user_agent", "weather-lookup/1.0 (+https://github.com/i474232898/weather-lookup)")
	v.SetDefault("geocoding_url", providers.DefaultOpenMeteoGeocodingURL)
	v.SetDefault("nominatim_url", providers.DefaultNominatimURL)
	v.SetDefault("forecast_url", providers.DefaultOpenMeteoForecastURL)
	v.SetDefault("air_quality_url", providers.DefaultOpenMeteoAirQualityURL)
	v.SetDefault("google_geocoder_api_key", "")
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("max_sessions", 10000)
	v.SetDefault("sweep_interval", "1m")
	v.SetDefault("tracing_enabled", false)
	v.SetDefault("tracing_endpoint", "")
	v.SetDefault("shutdown_timeout", "10s")
}
