package main

import (
	"context"
	"log"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/joho/godotenv"
	"github.com/oracle-dashboard/webhooks/oracle"
	"github.com/oracle-dashboard/webhooks/reconcile"
	"github.com/oracle-dashboard/webhooks/server"
	"github.com/oracle-dashboard/webhooks/webhook"
)

func main() {
	// Load .env for local runs, the real environment wins
	_ = godotenv.Load()

	cfg, cfgErr := loadConfig()

	// Setup go-kit logger
	var logger kitlog.Logger
	{
		logger = kitlog.NewJSONLogger(kitlog.NewSyncWriter(os.Stdout))
		logger = level.NewFilter(logger, levelOption(cfg.LogLevel))
		logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
		logger = kitlog.With(logger, "caller", kitlog.DefaultCaller)
		logger = kitlog.With(logger, "build", cfg.Version)
		logger = kitlog.With(logger, "app", cfg.AppName)

		log.SetOutput(kitlog.NewStdlibAdapter(logger))
	}

	if cfgErr != nil {
		level.Error(logger).Log("error", cfgErr, "msg", "invalid configuration")
		os.Exit(1)
	}
	if cfg.NOWPaymentsIPNSecret == "" || cfg.PaystackSecretKey == "" {
		level.Warn(logger).Log("msg", "a provider secret is not set, its webhooks will be rejected")
	}

	// Global app context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Oracle Engine client
	oracleClient := oracle.NewClient(
		cfg.OracleEngineBaseURL,
		oracle.WithTimeout(cfg.OracleEngineTimeout),
		oracle.WithServiceToken(cfg.OracleEngineServiceToken),
	)

	// Webhook service
	webhookService := webhook.NewService(
		webhook.NewRegistry(
			webhook.NewNOWPayments(cfg.NOWPaymentsIPNSecret),
			webhook.NewPaystack(cfg.PaystackSecretKey),
		),
		reconcile.NewDispatcher(oracleClient, kitlog.With(logger, "component", "reconcile")),
		kitlog.With(logger, "component", "webhook"),
	)

	// Init HTTP router
	r := initRouter(cfg, logger)

	// Mount HTTP endpoints
	r.Mount("/webhooks", server.MakeHTTPHandler(
		server.MakeEndpoints(webhookService, server.Config{
			AppName: cfg.AppName,
			Version: cfg.Version,
		}),
		logger,
	))

	// Run HTTP server
	if err := runServer(ctx, cfg, r, logger); err != nil {
		level.Error(logger).Log("error", err, "msg", "server stopped with error")
		os.Exit(1)
	}
}

// levelOption maps LOG_LEVEL onto a go-kit level filter.
func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
