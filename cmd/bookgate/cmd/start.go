package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/book-gate/bookgate/internal/adapter/inbound/api"
	"github.com/book-gate/bookgate/internal/adapter/outbound/datafile"
	"github.com/book-gate/bookgate/internal/adapter/outbound/reqlog"
	"github.com/book-gate/bookgate/internal/adapter/outbound/scraper"
	"github.com/book-gate/bookgate/internal/config"
	"github.com/book-gate/bookgate/internal/observability"
	"github.com/book-gate/bookgate/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server",
	Long: `Start the BookGate API server.

The dataset file is loaded once at startup; a missing or malformed file is
fatal. Admins can re-run the scraper and reload the dataset at runtime via
POST /api/v1/scraping/trigger and POST /api/v1/scraping/reload.

Examples:
  # Start with config file settings
  bookgate start

  # Start in dev mode (debug logging, seeded accounts, trace export)
  bookgate start --dev

  # Start with a specific config file
  bookgate --config /path/to/bookgate.yaml start`,
	RunE: runStart,
}

var devMode bool

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (debug logging, seeded accounts)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flag overrides config.
	if devMode {
		cfg.DevMode = true
	}

	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.LoadAccountsFile(); err != nil {
		return err
	}

	// Signal context for graceful shutdown. stop() restores default signal
	// handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("bookgate stopped")
	return nil
}

// run wires all components and serves until the context is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := observability.InitTracing(cfg.DevMode)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Dataset: load once at startup; failure here is fatal by design.
	dataFile := cfg.Data.File
	if dataFile == "" {
		dataFile = config.DefaultDataFile
	}
	store := datafile.NewStore(dataFile, logger)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	requestLog, err := reqlog.NewFileStore(reqlog.Config{
		Dir:       cfg.RequestLog.Dir,
		CacheSize: cfg.RequestLog.CacheSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("init request log: %w", err)
	}
	defer func() { _ = requestLog.Close() }()

	runner := scraper.NewRunner(scraper.Config{
		Command:  cfg.Scraper.Command,
		Args:     cfg.Scraper.Args,
		Timeout:  cfg.Scraper.ScraperTimeout(),
		MaxPages: cfg.Scraper.MaxPages,
	}, logger)

	authService := service.NewAuthService(
		[]byte(cfg.Auth.SecretKey),
		cfg.Auth.AccessTTL(),
		cfg.Auth.RefreshTTL(),
		cfg.Auth.Accounts,
		logger,
	)
	catalog := service.NewCatalogService(store)
	mlService := service.NewMLService(store)
	stats := service.NewStatsService()

	opts := []api.Option{
		api.WithCatalog(catalog),
		api.WithAuthService(authService),
		api.WithMLService(mlService),
		api.WithStatsService(stats),
		api.WithStore(store),
		api.WithScraperRunner(runner),
		api.WithRequestLog(requestLog),
		api.WithLogger(logger),
	}
	if cfg.RateLimit.Enabled {
		maxRequests := cfg.RateLimit.MaxRequests
		if maxRequests <= 0 {
			maxRequests = config.DefaultRateLimitMax
		}
		opts = append(opts, api.WithRateLimit(maxRequests, cfg.RateLimit.RateLimitWindow()))
	}
	handler := api.NewHandler(opts...)

	addr := cfg.Server.HTTPAddr
	if addr == "" {
		addr = config.DefaultHTTPAddr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           observability.TracingMiddleware(handler.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bookgate listening", "addr", addr, "dev_mode", cfg.DevMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
