// pkg/mexc/config.go
package mexc

import (
	"fmt"
	"strings"
	"time"

	"github.com/YaganovValera/mexc-bookticker/pkg/backoff"
)

// Config holds WebSocket configuration for the MEXC connector.
type Config struct {
	URL              string         `mapstructure:"ws_url"`
	Channels         []string       `mapstructure:"channels"`
	BufferSize       int            `mapstructure:"buffer_size"`
	PingInterval     time.Duration  `mapstructure:"ping_interval"`
	SubscribeTimeout time.Duration  `mapstructure:"subscribe_timeout"`
	BackoffConfig    backoff.Config `mapstructure:"backoff"`
}

// applyDefaults applies fallback defaults if values are unset.
func (c *Config) applyDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = 100
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 20 * time.Second
	}
	if c.SubscribeTimeout <= 0 {
		c.SubscribeTimeout = 5 * time.Second
	}
	// Задержка переподключения фиксированная: множитель 1.0.
	if c.BackoffConfig.InitialInterval <= 0 {
		c.BackoffConfig.InitialInterval = 3 * time.Second
	}
	if c.BackoffConfig.Multiplier <= 0 {
		c.BackoffConfig.Multiplier = 1.0
	}
}

// validate checks config for required fields.
func (c *Config) validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("mexc: URL is required")
	case len(c.Channels) == 0:
		return fmt.Errorf("mexc: at least one channel is required")
	default:
		return nil
	}
}

// BookTickerChannel собирает имя канала best bid/ask для символа и интервала,
// например spot@public.aggre.bookTicker.v3.api.pb@100ms@JUMPUSDT.
// Символ по требованию биржи всегда в верхнем регистре.
func BookTickerChannel(symbol, interval string) string {
	return fmt.Sprintf("spot@public.aggre.bookTicker.v3.api.pb@%s@%s", interval, strings.ToUpper(symbol))
}
