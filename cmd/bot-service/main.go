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
	"golang.org/x/sync/errgroup"

	"github.com/DESTRKOD/duck-bot/internal/bot/review"
	"github.com/DESTRKOD/duck-bot/internal/bot/telegram"
	"github.com/DESTRKOD/duck-bot/internal/bot/transport"
	"github.com/DESTRKOD/duck-bot/internal/catalog"
	"github.com/DESTRKOD/duck-bot/internal/config"
	"github.com/DESTRKOD/duck-bot/internal/shopclient"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "bot-service").Logger()

	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Str("address", cfg.Address).Msg("bot service starting")

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load product catalog")
	}

	queue := review.NewQueue()
	shop := shopclient.New(cfg.ShopURL, cfg.APISecret)
	svc := review.NewService(queue, shop, cfg.ReviewRetention, cfg.SweepInterval)

	bot, err := telegram.New(cfg.TelegramToken, cfg.AdminChatID, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start telegram bot")
	}
	svc.SetNotifier(bot)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      transport.NewRouter(svc, cat, cfg.APISecret),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", cfg.Address).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return bot.Run(ctx)
	})

	g.Go(func() error {
		return svc.RunSweeper(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("bot service failed")
	}

	log.Info().Msg("bot service stopped")
}
