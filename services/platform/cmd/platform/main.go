package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/voacom/commercial-intelligence-system/internal/util"
	"github.com/voacom/commercial-intelligence-system/pkg/ai"
	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/app"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/config"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var generator ai.TextGenerator
	if cfg.GenerationBaseURL != "" {
		generator = ai.NewOpenAICompatGenerator(cfg.GenerationBaseURL, cfg.GenerationAPIKey, cfg.GenerationModel)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		TokenSecret: cfg.TokenSecret,
		TokenTTL:    tokenTTL,
		Generator:   generator,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if _, err := appCore.RegisterUser(cfg.SeedAdminEmail, "Admin", cfg.SeedAdminPassword, domain.RoleAdmin); err != nil {
			logger.Warn("seed admin user failed", "err", err)
		}
	}

	httpServer, err := server.New(server.Config{
		App:                          appCore,
		RedisAddr:                    cfg.RedisAddr,
		RedisPassword:                cfg.RedisPassword,
		LoginRateLimitPerMinute:      cfg.LoginRateLimitPerMinute,
		GenerationRateLimitPerMinute: cfg.GenerationRateLimitPerMinute,
		AllowedOrigins:               cfg.AllowedOrigins,
		TrustedProxies:               cfg.TrustedProxies,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("platform server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
