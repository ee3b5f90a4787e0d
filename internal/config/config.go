// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads heavyfix configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"HEAVYFIX_DB_PATH" envDefault:"./data/heavyfix.db"`
	SessionSecret string `env:"HEAVYFIX_SESSION_SECRET,required"`
	ServerHost    string `env:"HEAVYFIX_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"HEAVYFIX_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"HEAVYFIX_ENV" envDefault:"development"`
	LogLevel      string `env:"HEAVYFIX_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"HEAVYFIX_UPLOADS_DIR" envDefault:"./uploads"`
	BaseURL       string `env:"HEAVYFIX_BASE_URL" envDefault:"http://localhost:8080"`
	Timezone      string `env:"HEAVYFIX_TIMEZONE" envDefault:"Asia/Seoul"`

	// Honor X-Real-IP / X-Forwarded-For. Enable only behind a reverse proxy
	// that overwrites these headers.
	TrustProxy bool `env:"HEAVYFIX_TRUST_PROXY" envDefault:"false"`

	// Default admin, created only when the users table is empty
	AdminEmail    string `env:"HEAVYFIX_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"HEAVYFIX_ADMIN_PASSWORD"`

	// Cache
	RedisURL     string        `env:"HEAVYFIX_REDIS_URL"`
	CachePrefix  string        `env:"HEAVYFIX_CACHE_PREFIX" envDefault:"heavyfix:"`
	CacheMaxSize int           `env:"HEAVYFIX_CACHE_MAX_SIZE" envDefault:"1000"`
	ERPCacheTTL  time.Duration `env:"HEAVYFIX_ERP_CACHE_TTL" envDefault:"5m"`
	BandCacheTTL time.Duration `env:"HEAVYFIX_BAND_CACHE_TTL" envDefault:"0s"`

	// Chat notifications
	SlackWebhookURL string `env:"HEAVYFIX_SLACK_WEBHOOK_URL"`

	// Scheduled jobs
	CronSecret  string `env:"HEAVYFIX_CRON_SECRET"`
	CronEnabled bool   `env:"HEAVYFIX_CRON_ENABLED" envDefault:"false"`
	CronDaily   string `env:"HEAVYFIX_CRON_DAILY" envDefault:"0 7 * * *"`
	CronWeekly  string `env:"HEAVYFIX_CRON_WEEKLY" envDefault:"0 7 * * 1"`
	CronPending string `env:"HEAVYFIX_CRON_PENDING" envDefault:"*/10 * * * *"`
	CronAds     string `env:"HEAVYFIX_CRON_ADS" envDefault:"30 6 * * *"`
	CronStock   string `env:"HEAVYFIX_CRON_STOCK" envDefault:"0 8 * * 1-5"`

	// Inbound inquiry webhook
	InquiryWebhookSecret string `env:"HEAVYFIX_INQUIRY_WEBHOOK_SECRET"`

	// ERP inventory
	ERPBaseURL string `env:"HEAVYFIX_ERP_BASE_URL"`
	ERPComCode string `env:"HEAVYFIX_ERP_COM_CODE"`
	ERPAPIKey  string `env:"HEAVYFIX_ERP_API_KEY"`
	ERPSecret  string `env:"HEAVYFIX_ERP_SECRET"`
	ERPCatalog string `env:"HEAVYFIX_ERP_CATALOG"`

	// Band social feed
	BandBaseURL     string `env:"HEAVYFIX_BAND_BASE_URL" envDefault:"https://openapi.band.us"`
	BandAccessToken string `env:"HEAVYFIX_BAND_ACCESS_TOKEN"`
	BandName        string `env:"HEAVYFIX_BAND_NAME"`
	BandMaxPages    int    `env:"HEAVYFIX_BAND_MAX_PAGES" envDefault:"3"`

	// Naver search ads
	NaverAdsBaseURL     string   `env:"HEAVYFIX_NAVER_ADS_BASE_URL" envDefault:"https://api.searchad.naver.com"`
	NaverAdsAPIKey      string   `env:"HEAVYFIX_NAVER_ADS_API_KEY"`
	NaverAdsSecret      string   `env:"HEAVYFIX_NAVER_ADS_SECRET"`
	NaverAdsCustomerID  string   `env:"HEAVYFIX_NAVER_ADS_CUSTOMER_ID"`
	NaverAdsCampaignIDs []string `env:"HEAVYFIX_NAVER_ADS_CAMPAIGN_IDS" envSeparator:","`

	// Image proxy
	ImageProxyHosts []string `env:"HEAVYFIX_IMAGE_PROXY_HOSTS" envSeparator:"," envDefault:"coresos-phinf.pstatic.net,phinf.pstatic.net,band.us"`

	// OAuth providers
	GoogleClientID     string `env:"HEAVYFIX_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"HEAVYFIX_GOOGLE_CLIENT_SECRET"`
	KakaoClientID      string `env:"HEAVYFIX_KAKAO_CLIENT_ID"`
	KakaoClientSecret  string `env:"HEAVYFIX_KAKAO_CLIENT_SECRET"`

	// Object storage; local disk is used when S3Bucket is empty
	S3Bucket        string `env:"HEAVYFIX_S3_BUCKET"`
	S3Region        string `env:"HEAVYFIX_S3_REGION" envDefault:"ap-northeast-2"`
	S3Endpoint      string `env:"HEAVYFIX_S3_ENDPOINT"`
	S3AccessKey     string `env:"HEAVYFIX_S3_ACCESS_KEY"`
	S3SecretKey     string `env:"HEAVYFIX_S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"HEAVYFIX_S3_PUBLIC_BASE_URL"`
	S3PathStyle     bool   `env:"HEAVYFIX_S3_PATH_STYLE" envDefault:"false"`

	location *time.Location
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Location returns the configured time zone. Dates such as "today" for
// schedules and inventory are computed in this zone.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SlackEnabled reports whether chat notifications are configured.
func (c Config) SlackEnabled() bool {
	return c.SlackWebhookURL != ""
}

// ERPEnabled reports whether the ERP inventory client is configured.
func (c Config) ERPEnabled() bool {
	return c.ERPBaseURL != "" && c.ERPAPIKey != "" && c.ERPSecret != ""
}

// BandEnabled reports whether the band feed client is configured.
func (c Config) BandEnabled() bool {
	return c.BandAccessToken != ""
}

// NaverAdsEnabled reports whether the search ads client is configured.
func (c Config) NaverAdsEnabled() bool {
	return c.NaverAdsAPIKey != "" && c.NaverAdsSecret != "" && c.NaverAdsCustomerID != ""
}

// S3Enabled reports whether uploads go to S3-compatible storage.
func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// KakaoEnabled reports whether Kakao sign-in is configured.
func (c Config) KakaoEnabled() bool {
	return c.KakaoClientID != "" && c.KakaoClientSecret != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The secret also signs OAuth state tokens.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("HEAVYFIX_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("HEAVYFIX_SESSION_SECRET is a known default value and must not be used")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("HEAVYFIX_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch cfg.Env {
	case "development", "production":
	default:
		return nil, fmt.Errorf("HEAVYFIX_ENV must be development or production, got %q", cfg.Env)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("HEAVYFIX_SERVER_PORT out of range: %d", cfg.ServerPort)
	}
	if cfg.BandMaxPages < 1 {
		cfg.BandMaxPages = 1
	}
	if cfg.ERPCacheTTL < 0 || cfg.BandCacheTTL < 0 {
		return nil, fmt.Errorf("cache TTLs must not be negative")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	cfg.ImageProxyHosts = normalizeHosts(cfg.ImageProxyHosts)

	return cfg, nil
}

// normalizeHosts lowercases, trims and de-duplicates host names.
func normalizeHosts(hosts []string) []string {
	seen := make(map[string]bool, len(hosts))
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
