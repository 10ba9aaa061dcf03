package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/satriacloudx/BotDracinV2/internal/adapters/httpapi"
	"github.com/satriacloudx/BotDracinV2/internal/adapters/memorybus"
	"github.com/satriacloudx/BotDracinV2/internal/adapters/memstore"
	"github.com/satriacloudx/BotDracinV2/internal/adapters/telegram"
	"github.com/satriacloudx/BotDracinV2/internal/app"
	"github.com/satriacloudx/BotDracinV2/internal/buildinfo"
	"github.com/satriacloudx/BotDracinV2/internal/config"
	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	addr := flag.String("addr", cfg.Addr, "Adresse du endpoint status (ex: 127.0.0.1:8080)")
	token := flag.String("token", cfg.BotToken, "Token Telegram (défaut: DRACIN_BOT_TOKEN)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "dracin-server").Logger()
	log.Logger = logger

	logger.Info().Interface("build", buildinfo.Current()).Int("admins", len(cfg.AdminIDs)).Msg("starting")
	if *token == "" {
		logger.Fatal().Msg("missing bot token (DRACIN_BOT_TOKEN)")
	}
	if len(cfg.AdminIDs) == 0 {
		// fail-closed: aucun verbe admin ne passera
		logger.Warn().Msg("empty admin allow-list, admin surface disabled")
	}

	bus := memorybus.New()
	catalogStore := memstore.NewCatalogStore()
	subStore := memstore.NewSubscriptionStore()
	tokenStore := memstore.NewTokenStore()
	sessionStore := memstore.NewSessionStore()

	access := app.NewAccessService(subStore, tokenStore, bus, app.AccessOptions{
		LockThreshold: domain.EpisodeNumber(cfg.LockThreshold),
		WarnWindow:    cfg.WarnWindow,
	})
	catalog := app.NewCatalogService(catalogStore, bus)

	bot, err := telegram.New(*token, logger.With().Str("component", "telegram").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to reach telegram")
	}

	ingest := app.NewIngestService(logger.With().Str("component", "ingest").Logger(), catalog, sessionStore)
	delivery := app.NewDeliveryService(logger.With().Str("component", "delivery").Logger(), catalog, access, sessionStore, bot)
	router := app.NewRouter(logger.With().Str("component", "router").Logger(), access, catalog, ingest, delivery, sessionStore, bot, cfg.AdminSet())
	bot.SetRouter(router)

	srv := httpapi.NewServer(logger, catalog, access, bus)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(shutdownCtx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", *addr).Msg("status endpoint listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		// Termine les flux SSE en cours pour laisser Shutdown drainer.
		bus.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("exited with error")
	}
	logger.Info().Msg("bye")
}
