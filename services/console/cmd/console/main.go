package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/voacom/commercial-intelligence-system/internal/util"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/app"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/config"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/platformclient"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	consoleApp := app.New(platformclient.NewClient(cfg.PlatformBaseURL))

	httpServer := server.New(server.Config{
		App:            consoleApp,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("console server listening", "addr", addr, "platform", cfg.PlatformBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
