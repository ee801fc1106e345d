package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"momodash/internal/api"
	"momodash/internal/cache"
	"momodash/internal/chart"
	"momodash/internal/config"
	"momodash/internal/core"
	"momodash/internal/dashboard"
	apphttp "momodash/internal/http"
	"momodash/internal/log"
	"momodash/internal/metrics"
	"momodash/internal/middleware/ratelimit"
	"momodash/internal/session"
	appweb "momodash/web"
)

func main() {
	// Load .env when present; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()

	logConfig := log.DefaultConfig()
	logConfig.Level = log.ParseLevel(cfg.LogLevel)
	logger := log.New(logConfig)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	var (
		recorder  metrics.Recorder = metrics.NoOp{}
		collector *metrics.Collector
	)
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("momodash")
		recorder = collector
	}

	client := api.NewClient(api.Options{
		BaseURL:         cfg.APIBaseURL,
		Timeout:         cfg.APITimeout,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
		Metrics:         recorder,
		Logger:          logger,
	})

	page, err := apphttp.NewPage(appweb.TemplatesFS, apphttp.PageData{
		Title:    "Financial Dashboard",
		Currency: cfg.Currency,
		Locale:   cfg.Locale,
	})
	if err != nil {
		logger.Error("Failed to prepare dashboard page", log.FieldError, err)
		os.Exit(1)
	}

	sessions := session.NewStore(session.Config{
		TTL:     cfg.SessionTTL,
		MaxSize: cfg.SessionMax,
		Page:    page.Document,
		Backend: client,
		Dashboard: dashboard.Options{
			Formatter: core.NewFormatter(cfg.Currency, cfg.Locale),
			Renderer:  chart.NewRenderer(logger, recorder),
			Logger:    logger,
			Metrics:   recorder,
		},
		Metrics: recorder,
		Logger:  logger,
	})

	caches := cache.NewManager(logger)
	caches.Register(sessions)
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           cfg.Addr(),
		Sessions:       sessions,
		SessionTTL:     cfg.SessionTTL,
		API:            client,
		Metrics:        collector,
		RateLimit:      ratelimit.DefaultConfig(),
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		cancel()
	}()

	logger.Info("Starting momodash server",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"currency", cfg.Currency,
		"metrics", cfg.MetricsEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
