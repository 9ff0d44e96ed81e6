package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardsite/backend/internal/config"
	"github.com/cardsite/backend/internal/handler"
	"github.com/cardsite/backend/internal/logging"
	"github.com/cardsite/backend/internal/metrics"
	"github.com/cardsite/backend/internal/photo"
	"github.com/cardsite/backend/internal/repository"
	"github.com/cardsite/backend/internal/service"
	"github.com/cardsite/backend/internal/storage"
	"github.com/cardsite/backend/pkg/notion"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("ERROR", "json")
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		logging.Fatal("failed to register metrics", "error", err)
	}

	// Notion 未設定の場合は contact を 500、analytics をログのみにする
	notionClient := notion.NewClient(cfg.Notion.Token, cfg.Notion.APIURL)
	if !notionClient.Configured() {
		slog.Warn("NOTION_TOKEN not set: contact submissions will fail and analytics is log-only")
	}

	var sinks []repository.AnalyticsRepository
	if notionClient.Configured() && cfg.Notion.AnalyticsDatabaseID != "" {
		sinks = append(sinks, repository.NewNotionAnalyticsRepository(notionClient, cfg.Notion.AnalyticsDatabaseID))
	}

	var db repository.DB
	if cfg.DatabaseEnabled() {
		pool, err := repository.NewPool(context.Background(), cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer pool.Close()
		db = pool
		sinks = append(sinks, repository.NewPgAnalyticsRepository(pool))
	}

	contactService := service.NewContactService(
		repository.NewNotionContactRepository(notionClient, cfg.Notion.ContactDatabaseID),
		storage.NewNotionStore(notionClient),
		service.ContactOptions{
			Enabled: notionClient.Configured(),
			PhotoLimits: photo.Limits{
				MaxBytes:     cfg.Upload.MaxBytes,
				MaxDimension: cfg.Upload.MaxDimension,
			},
			Metrics: m,
		},
	)
	analyticsService := service.NewAnalyticsService(sinks, service.AnalyticsOptions{Metrics: m})

	h := handler.New(db, notionClient.Configured(), cfg.FrontendURL)
	contactHandler := handler.NewContactHandler(contactService, handler.ContactBodyLimit(cfg.Upload.MaxBytes))
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	vcardHandler := handler.NewVCardHandler(cfg.Profile)
	contactLimiter := handler.NewRateLimiter(handler.RateLimitOptions{
		PerMinute:      cfg.ContactRateLimit,
		TrustedProxies: cfg.TrustedProxies,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("POST /api/contact", contactLimiter.Middleware(http.HandlerFunc(contactHandler.Submit)))
	mux.HandleFunc("POST /api/analytics", analyticsHandler.Log)
	mux.HandleFunc("GET /api/analytics", analyticsHandler.Status)
	mux.HandleFunc("GET /api/vcard", vcardHandler.Download)
	mux.Handle("GET /metrics", m.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.SecurityHeaders(h.CORS(handler.RequestID(handler.RequestLogger(m)(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// contact requests wait on up to three sequential Notion calls
		WriteTimeout: 100 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "notion", notionClient.Configured(), "database", cfg.DatabaseEnabled(), "trusted_proxies", cfg.TrustedProxies)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	contactLimiter.Stop()
}
