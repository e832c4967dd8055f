package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/go-env"
	"github.com/labstack/gommon/bytes"
)

// Build tag is set up while compiling
var buildTagRuntime string

type config struct {
	AppName  string
	Version  string
	LogLevel string

	HTTPPort            int
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPShutdownTimeout time.Duration
	HTTPMaxBodySize     int64
	CORSAllowedOrigins  []string

	// Provider signing secrets. An empty secret rejects every delivery of that provider.
	NOWPaymentsIPNSecret string
	PaystackSecretKey    string

	OracleEngineBaseURL      string
	OracleEngineServiceToken string
	OracleEngineTimeout      time.Duration
}

// loadConfig reads the configuration from the environment.
func loadConfig() (config, error) {
	cfg := config{
		AppName:  env.GetString("APP_NAME", "oracle-dashboard-webhooks"),
		Version:  env.GetString("COMMIT_HASH", buildTagRuntime),
		LogLevel: strings.ToLower(env.GetString("LOG_LEVEL", "info")),

		HTTPPort:            env.GetInt("HTTP_PORT", 8080),
		HTTPReadTimeout:     env.GetDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:    env.GetDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPShutdownTimeout: env.GetDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSAllowedOrigins:  splitList(env.GetString("CORS_ALLOWED_ORIGINS", "")),

		NOWPaymentsIPNSecret: env.GetString("NOWPAYMENTS_IPN_SECRET", ""),
		PaystackSecretKey:    env.GetString("PAYSTACK_SECRET_KEY", ""),

		OracleEngineBaseURL:      strings.TrimSpace(env.GetString("ORACLE_ENGINE_BASE_URL", "")),
		OracleEngineServiceToken: env.GetString("ORACLE_ENGINE_SERVICE_TOKEN", ""),
		OracleEngineTimeout:      env.GetDuration("ORACLE_ENGINE_TIMEOUT", 10*time.Second),
	}

	bodyLimit, err := bytes.Parse(env.GetString("HTTP_MAX_BODY_SIZE", "1MB"))
	if err != nil {
		return cfg, fmt.Errorf("invalid HTTP_MAX_BODY_SIZE: %w", err)
	}
	cfg.HTTPMaxBodySize = bodyLimit

	if cfg.OracleEngineBaseURL == "" {
		return cfg, errors.New("ORACLE_ENGINE_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.OracleEngineBaseURL); err != nil {
		return cfg, fmt.Errorf("invalid ORACLE_ENGINE_BASE_URL: %w", err)
	}

	return cfg, nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
