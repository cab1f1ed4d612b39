package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jetafese/crossd/internal/api"
	"github.com/jetafese/crossd/internal/app"
	"github.com/jetafese/crossd/internal/config"
	"github.com/jetafese/crossd/internal/logging"
	"github.com/jetafese/crossd/internal/market"
	"github.com/jetafese/crossd/internal/offerstore"
)

func main() {
	cfg := config.LoadFromEnv("")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logger.Sync()

	store, err := offerstore.Open(cfg.DataDir)
	if err != nil {
		logger.Fatal("opening offer store failed", zap.Error(err))
	}
	defer store.Close()

	a := app.New()
	for _, mc := range cfg.Markets {
		params := market.Params{
			TickSize:    mc.TickSize,
			LotSize:     mc.LotSize,
			MinNotional: mc.MinNotional,
			Scale:       mc.Scale,
		}
		m, err := market.NewMarket(mc.Symbol, mc.WheatAsset, mc.SheepAsset, params)
		if err != nil {
			logger.Fatal("invalid market configuration", zap.String(logging.FieldMarket, mc.Symbol), zap.Error(err))
		}
		if err := a.AddMarket(m, store); err != nil {
			logger.Fatal("registering market failed", zap.String(logging.FieldMarket, mc.Symbol), zap.Error(err))
		}
		logger.Info("market registered", zap.String(logging.FieldMarket, mc.Symbol))
	}

	server := api.NewServer(a, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RESTAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Fatal("server stopped", zap.Error(err))
	}
}
