// Package logging constructs the structured logger every crossd component
// receives explicitly at construction time; nothing in this repository
// reaches for a mutable global logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON-structured logger at the given level ("debug", "info",
// "warn", or "error").
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Fields used consistently across the packages that log crossing activity.
const (
	FieldMarket = "market"
	FieldOrder  = "order_id"
	FieldPriceN = "price_n"
	FieldPriceD = "price_d"
)
