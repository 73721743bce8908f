// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-actus-bot/internal/application"
	"crypto-actus-bot/internal/config"
	newsAdapter "crypto-actus-bot/internal/infra/adapters/news"
	tele "crypto-actus-bot/internal/infra/adapters/telegram"
	"crypto-actus-bot/internal/infra/httpclient"
	"crypto-actus-bot/internal/infra/i18n"
	"crypto-actus-bot/internal/infra/logging"
	"crypto-actus-bot/internal/infra/metrics"
	"crypto-actus-bot/internal/infra/web"
	"crypto-actus-bot/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "developer mode: console logs, no secret redaction")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crypto-actus-bot %s (%s)\n", version, commit)
		return
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err := tele.UseLogger(logger, cfg.Bot.Token); err != nil {
		logger.Warn().Err(err).Msg("tgbotapi logger not installed")
	}
	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Str("news_api_key", logging.Redact(cfg.News.APIKey, cfg.Runtime.Dev)).
		Bool("webhook_mode", cfg.WebhookMode()).
		Msg("starting crypto-actus-bot")

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Localization ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Lang)
	if err != nil {
		logger.Fatal().Err(err).Str("lang", cfg.Bot.Lang).Msg("failed to load translations")
	}

	// ---- News pipeline ----
	httpClient := httpclient.NewRestyClient(cfg.News.Timeout)
	defer httpClient.Close()

	provider, err := newsAdapter.NewCryptoCompareProvider(httpClient, cfg.News, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("news provider")
	}
	newsUC := usecase.NewNewsUseCase(provider, translator, cfg.News.Limit, logger)

	dispatcher, err := application.NewDispatcher(newsUC, translator, version, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("dispatcher")
	}

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, dispatcher, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	menu := []tele.MenuCommand{
		{Command: "start", Description: translator.T("menu_start")},
		{Command: "actus", Description: translator.T("menu_actus")},
		{Command: "help", Description: translator.T("menu_help")},
	}
	if err := botAdapter.SetMenuCommands(ctx, menu); err != nil {
		logger.Warn().Err(err).Msg("failed to set menu commands")
	}

	// ---- HTTP server (webhook, health, metrics) ----
	webServer, err := web.NewServer(botAdapter, cfg.Bot.Token, version, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("web server")
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Webhook.Port),
		Handler:           webServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	pollingDone := make(chan struct{})
	if cfg.WebhookMode() {
		close(pollingDone)
		botAdapter.SetupWebhook(ctx, cfg.Webhook.URL)
	} else {
		go func() {
			defer close(pollingDone)
			if err := botAdapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("telegram polling stopped")
				stop()
			}
		}()
	}

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("http server error")
	}

	botAdapter.StopPolling()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	select {
	case <-pollingDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("queued updates not finished before shutdown timeout")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}
	logger.Info().Msg("bye")
}
