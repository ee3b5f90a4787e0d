// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata" // Asia/Seoul must resolve on minimal images

	"github.com/joho/godotenv"

	"github.com/olegiv/heavyfix/internal/auth"
	"github.com/olegiv/heavyfix/internal/band"
	"github.com/olegiv/heavyfix/internal/cache"
	"github.com/olegiv/heavyfix/internal/config"
	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/handler"
	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/imageproxy"
	"github.com/olegiv/heavyfix/internal/jobs"
	"github.com/olegiv/heavyfix/internal/logging"
	"github.com/olegiv/heavyfix/internal/metrics"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/naverads"
	"github.com/olegiv/heavyfix/internal/notify"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/scheduler"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/session"
	"github.com/olegiv/heavyfix/internal/storage"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/version"
	"github.com/olegiv/heavyfix/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the environment is read")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "heavyfix - equipment repair site and admin console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HEAVYFIX_SESSION_SECRET    Session and OAuth state key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HEAVYFIX_DB_PATH           SQLite database path (default: ./data/heavyfix.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HEAVYFIX_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HEAVYFIX_ENV               development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HEAVYFIX_CRON_SECRET       Bearer token for /api/cron/{job}\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HEAVYFIX_SLACK_WEBHOOK_URL Slack incoming webhook for notifications\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(*envFile); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also land in the events table.
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	loc := cfg.Location()
	sessionManager := session.New(db, cfg.IsDevelopment())

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sessionManager,
		Location:       loc,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	m := metrics.New()

	cacher := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.ERPCacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = cacher.Close() }()

	var notifier notify.Notifier
	if cfg.SlackEnabled() {
		notifier = notify.NewSlack(cfg.SlackWebhookURL, m, logger)
	} else {
		slog.Info("slack notifications disabled")
	}

	events := service.NewEventService(db, logger)
	svc := services{
		events:    events,
		users:     service.NewUserService(db, events, logger),
		posts:     service.NewPostService(db, events, logger),
		questions: service.NewInquiryService(db, notifier, events, logger),
		customers: service.NewCustomerInquiryService(db, notifier, m, events, logger),
		schedules: service.NewScheduleService(db, events, logger),
		adStats:   service.NewAdStatsService(db),
	}

	proxy := imageproxy.New(cfg.ImageProxyHosts, nil, m, logger)

	// Optional integrations stay untyped nil when disabled.
	var inventory jobs.InventorySource
	if cfg.ERPEnabled() {
		var catalog erp.Catalog
		if cfg.ERPCatalog != "" {
			if catalog, err = erp.LoadCatalog(cfg.ERPCatalog); err != nil {
				return fmt.Errorf("loading ERP catalog: %w", err)
			}
		}
		client := erp.NewClient(erp.ClientConfig{
			BaseURL:   cfg.ERPBaseURL,
			ComCode:   cfg.ERPComCode,
			APIKey:    cfg.ERPAPIKey,
			Secret:    cfg.ERPSecret,
			UserAgent: userAgent(),
		})
		inventory = erp.NewService(client, catalog, cacher, cfg.ERPCacheTTL)
		slog.Info("ERP inventory enabled", "products", len(catalog))
	}

	// Without a token the client answers ErrNotConfigured and the feed
	// endpoint reports a Server result.
	feed := band.NewService(band.NewClient(band.ClientConfig{
		BaseURL:     cfg.BandBaseURL,
		AccessToken: cfg.BandAccessToken,
		MaxPages:    cfg.BandMaxPages,
		UserAgent:   userAgent(),
	}), cfg.BandName, proxy.URLFor, cacher, cfg.BandCacheTTL)
	if cfg.BandEnabled() {
		slog.Info("band feed enabled", "band", cfg.BandName)
	}

	var ads jobs.StatsFetcher
	if cfg.NaverAdsEnabled() {
		ads = naverads.NewClient(naverads.ClientConfig{
			BaseURL:     cfg.NaverAdsBaseURL,
			APIKey:      cfg.NaverAdsAPIKey,
			Secret:      cfg.NaverAdsSecret,
			CustomerID:  cfg.NaverAdsCustomerID,
			CampaignIDs: cfg.NaverAdsCampaignIDs,
			UserAgent:   userAgent(),
		})
	}

	var uploads storage.Storage
	if cfg.S3Enabled() {
		uploads, err = storage.NewS3(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PathStyle:     cfg.S3PathStyle,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("initializing S3 storage: %w", err)
		}
		slog.Info("uploads stored in S3", "bucket", cfg.S3Bucket)
	} else {
		uploads, err = storage.NewLocal(cfg.UploadsDir, "/uploads")
		if err != nil {
			return fmt.Errorf("initializing upload directory: %w", err)
		}
	}

	runner := jobs.New(jobs.Deps{
		Schedules: svc.schedules,
		Inquiries: svc.customers,
		Ads:       ads,
		AdStats:   svc.adStats,
		Inventory: inventory,
		Notifier:  notifier,
		Metrics:   m,
		Events:    events,
		Logger:    logger,
		Location:  loc,
	})

	var registry *scheduler.Registry
	if cfg.CronEnabled {
		sched := scheduler.New(runner, loc, logger)
		for job, spec := range map[string]string{
			jobs.DailySchedule:    cfg.CronDaily,
			jobs.WeeklySchedule:   cfg.CronWeekly,
			jobs.PendingInquiries: cfg.CronPending,
			jobs.NaverAds:         cfg.CronAds,
			jobs.LowStock:         cfg.CronStock,
		} {
			if err := sched.Add(job, spec); err != nil {
				return err
			}
		}
		sched.Start()
		defer sched.Stop()
		registry = sched.Registry()
	}

	var providers []*auth.Provider
	if cfg.GoogleEnabled() {
		providers = append(providers, auth.GoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, callbackURL(cfg, "google")))
	}
	if cfg.KakaoEnabled() {
		providers = append(providers, auth.KakaoProvider(cfg.KakaoClientID, cfg.KakaoClientSecret, callbackURL(cfg, "kakao")))
	}
	oauth := auth.NewOAuth([]byte(cfg.SessionSecret), providers...)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	health := map[string]handler.Pinger{}
	if rc, ok := cacher.(*cache.RedisCache); ok {
		health["redis"] = rc
	}

	router := newRouter(routerDeps{
		cfg:             cfg,
		db:              db,
		sessionManager:  sessionManager,
		renderer:        renderer,
		svc:             svc,
		oauth:           oauth,
		loginProtection: loginProtection,
		inventory:       inventory,
		feed:            feed,
		proxy:           proxy,
		uploads:         uploads,
		runner:          runner,
		registry:        registry,
		metrics:         m,
		health:          health,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func callbackURL(cfg *config.Config, provider string) string {
	return cfg.BaseURL + handler.RouteOAuth + "/" + provider + "/callback"
}

func userAgent() string {
	return "heavyfix/" + version.Get().Version
}
