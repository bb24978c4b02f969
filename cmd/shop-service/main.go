package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DESTRKOD/duck-bot/internal/botclient"
	"github.com/DESTRKOD/duck-bot/internal/catalog"
	"github.com/DESTRKOD/duck-bot/internal/config"
	"github.com/DESTRKOD/duck-bot/internal/shop/order"
	"github.com/DESTRKOD/duck-bot/internal/shop/transport"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "shop-service").Logger()

	cfg, err := config.LoadShop()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Str("address", cfg.Address).Msg("shop service starting")

	repo, err := order.NewFileRepository(cfg.OrdersFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open order store")
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load product catalog")
	}

	notifier := botclient.New(cfg.BotURL, cfg.APISecret)
	svc := order.NewService(repo, notifier, cat, cfg.APISecret)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      transport.NewRouter(svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Address).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("shutdown failed")
	}

	log.Info().Msg("shop service stopped")
}
