// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/YaganovValera/mexc-bookticker/internal/http"
	"github.com/YaganovValera/mexc-bookticker/pkg/backoff"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
)

/*
   --------------------------------------------------------------------------
   СТРУКТУРЫ
   --------------------------------------------------------------------------
*/

// Config — все настройки сервиса.
type Config struct {
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	MEXC           MEXCConfig    `mapstructure:"mexc"`
	Decode         DecodeConfig  `mapstructure:"decode"`
	Telemetry      Telemetry     `mapstructure:"telemetry"`
	Logging        logger.Config `mapstructure:"logging"`
	HTTP           http.Config   `mapstructure:"http"`
}

// MEXCConfig хранит настройки для WS MEXC.
type MEXCConfig struct {
	WSURL            string         `mapstructure:"ws_url"`
	Symbol           string         `mapstructure:"symbol"`
	Interval         string         `mapstructure:"interval"`
	PingInterval     time.Duration  `mapstructure:"ping_interval"`
	BufferSize       int            `mapstructure:"buffer_size"`
	SubscribeTimeout time.Duration  `mapstructure:"subscribe_timeout"`
	Backoff          backoff.Config `mapstructure:"backoff"`
}

// DecodeConfig управляет возможностью protobuf-декодирования.
// При false бинарные кадры печатаются как отчёт о длине.
type DecodeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Telemetry хранит настройки OpenTelemetry.
type Telemetry struct {
	OTLPEndpoint string `mapstructure:"otel_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

/*
   --------------------------------------------------------------------------
   LOADER
   --------------------------------------------------------------------------
*/

// Load загружает и валидирует конфиг. Если path пустой — читаются только ENV и defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ---------- 1) Defaults ----------
	v.SetDefault("service_name", "mexc-bookticker")
	v.SetDefault("service_version", "v1.0.0")

	// MEXC
	v.SetDefault("mexc.ws_url", "wss://wbs-api.mexc.com/ws")
	v.SetDefault("mexc.symbol", "JUMPUSDT")
	v.SetDefault("mexc.interval", "100ms")
	v.SetDefault("mexc.ping_interval", "20s")
	v.SetDefault("mexc.subscribe_timeout", "5s")
	v.SetDefault("mexc.buffer_size", 100)
	v.SetDefault("mexc.backoff.initial_interval", "3s")
	v.SetDefault("mexc.backoff.multiplier", 1.0)

	// Decode
	v.SetDefault("decode.enabled", true)

	// Telemetry
	v.SetDefault("telemetry.otel_endpoint", "otel-collector:4317")
	v.SetDefault("telemetry.insecure", false)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.dev_mode", false)

	// HTTP server
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "5s")

	// ---------- 2) ENV ----------
	v.SetEnvPrefix("BOOKTICKER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// ---------- 3) Optional file ----------
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", v.ConfigFileUsed(), err)
		}
	}

	// ---------- 4) Decode ----------
	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToBoolHook,
	)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     &cfg,
		DecodeHook: decodeHook,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// ---------- 5) Validation ----------
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// stringToBoolHook разбирает true/false, иначе отдает исходные данные.
func stringToBoolHook(f, t reflect.Kind, data interface{}) (interface{}, error) {
	if f == reflect.String && t == reflect.Bool {
		return strconv.ParseBool(data.(string))
	}
	return data, nil
}

/*
   --------------------------------------------------------------------------
   VALIDATION
   --------------------------------------------------------------------------
*/

func (c *Config) Validate() error {
	// Service
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.ServiceVersion == "" {
		return fmt.Errorf("service_version is required")
	}

	// MEXC
	if c.MEXC.WSURL == "" {
		return fmt.Errorf("mexc.ws_url is required")
	}
	if c.MEXC.Symbol == "" {
		return fmt.Errorf("mexc.symbol is required")
	}
	switch c.MEXC.Interval {
	case "100ms", "10ms":
	default:
		return fmt.Errorf("mexc.interval must be one of [100ms, 10ms]")
	}
	if c.MEXC.PingInterval <= 0 {
		return fmt.Errorf("mexc.ping_interval must be > 0")
	}
	if c.MEXC.SubscribeTimeout <= 0 {
		return fmt.Errorf("mexc.subscribe_timeout must be > 0")
	}

	// Telemetry
	if c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry.otel_endpoint is required")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error]")
	}

	// HTTP
	if err := validateHTTP(&c.HTTP); err != nil {
		return err
	}

	return nil
}

func validateHTTP(h *http.Config) error {
	if h.Port <= 0 || h.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535")
	}
	durations := map[string]time.Duration{
		"http.read_timeout":     h.ReadTimeout,
		"http.write_timeout":    h.WriteTimeout,
		"http.idle_timeout":     h.IdleTimeout,
		"http.shutdown_timeout": h.ShutdownTimeout,
	}
	for k, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", k)
		}
	}
	return nil
}

/*
   --------------------------------------------------------------------------
   DEBUG PRINT
   --------------------------------------------------------------------------
*/

// Print выводит текущий конфиг в JSON (удобно в DevMode).
func (c *Config) Print() {
	b, _ := json.MarshalIndent(c, "", "  ")
	fmt.Println("Loaded configuration:\n", string(b))
}
