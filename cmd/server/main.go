package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"tasklane/internal/app"
	flagservice "tasklane/internal/flag/service"
	"tasklane/internal/flag/store/override"
	"tasklane/internal/platform/config"
	"tasklane/internal/platform/httpserver"
	"tasklane/internal/platform/logger"
	"tasklane/internal/platform/metrics"
	platformredis "tasklane/internal/platform/redis"
	httptransport "tasklane/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Misconfigured manifests or flags abort startup loudly; only event
// consumers are allowed to degrade at runtime.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	redisClient, err := platformredis.New(cfg.RedisURL, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	var overrides flagservice.OverrideStore
	if redisClient != nil {
		overrides = override.NewRedisStore(redisClient.Client)
		defer redisClient.Close()
	}

	application, err := app.New(cfg, log, m, overrides)
	if err != nil {
		log.Error("application wiring failed", "error", err.Error())
		os.Exit(1)
	}

	if err := application.Loader.LoadModules(catalog()); err != nil {
		log.Error("module load failed", "error", err.Error())
		os.Exit(1)
	}
	for _, f := range launchFlags() {
		if err := application.Flags.RegisterFlag(f); err != nil {
			log.Error("flag registration failed", "flag_id", f.ID, "error", err.Error())
			os.Exit(1)
		}
	}

	handler := httptransport.NewHandler(application.Registry, application.Flags, application.Bus, log)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting tasklane platform core", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
