// Package config loads crossd's process configuration from environment
// variables, optionally merged from a .env file, following the same
// load-order convention as the node this package was adapted from: ENV
// overrides .env overrides built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MarketConfig describes one traded pair's admission parameters.
type MarketConfig struct {
	Symbol      string
	WheatAsset  string
	SheepAsset  string
	TickSize    int64
	LotSize     int64
	MinNotional int64
	Scale       int32
}

// Config is crossd's full process configuration.
type Config struct {
	RESTAddr string
	DataDir  string
	LogLevel string
	Markets  []MarketConfig
}

// Default returns the built-in defaults: a single WHEAT/SHEEP market
// listening on :8080 with data persisted under ./data.
func Default() Config {
	return Config{
		RESTAddr: ":8080",
		DataDir:  "data/offers",
		LogLevel: "info",
		Markets: []MarketConfig{
			{
				Symbol:      "WHEAT/SHEEP",
				WheatAsset:  "WHEAT",
				SheepAsset:  "SHEEP",
				TickSize:    1,
				LotSize:     1,
				MinNotional: 0,
				Scale:       1,
			},
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present, optional)
// and then environment variables, overriding Default's values. envPath
// empty means "look for .env in the current directory".
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("CROSSD_REST_ADDR"); v != "" {
		cfg.RESTAddr = v
	}
	if v := os.Getenv("CROSSD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CROSSD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if len(cfg.Markets) > 0 {
		if v := os.Getenv("CROSSD_MARKET_SCALE"); v != "" {
			if scale, err := strconv.ParseInt(v, 10, 32); err == nil {
				cfg.Markets[0].Scale = int32(scale)
			}
		}
		if v := os.Getenv("CROSSD_MARKET_TICK_SIZE"); v != "" {
			if tick, err := strconv.ParseInt(v, 10, 64); err == nil {
				cfg.Markets[0].TickSize = tick
			}
		}
		if v := os.Getenv("CROSSD_MARKET_LOT_SIZE"); v != "" {
			if lot, err := strconv.ParseInt(v, 10, 64); err == nil {
				cfg.Markets[0].LotSize = lot
			}
		}
	}

	return cfg
}

// Validate checks that the REST address and data directory are set and that
// at least one market is configured, with no symbol repeated. Each market's
// tick, lot, notional and scale values are not checked here; market.NewMarket
// checks them when the node registers the market.
func (c Config) Validate() error {
	if c.RESTAddr == "" {
		return fmt.Errorf("config: REST address must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data directory must not be empty")
	}
	if len(c.Markets) == 0 {
		return fmt.Errorf("config: at least one market must be configured")
	}
	seen := make(map[string]bool)
	for _, m := range c.Markets {
		if seen[m.Symbol] {
			return fmt.Errorf("config: duplicate market symbol %s", m.Symbol)
		}
		seen[m.Symbol] = true
	}
	return nil
}
