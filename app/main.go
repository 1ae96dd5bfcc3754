package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vidqueue/app/api"
	"vidqueue/app/bot"
	"vidqueue/app/cache"
	"vidqueue/app/cfg"
	"vidqueue/app/database"
	"vidqueue/app/matcher"
	"vidqueue/app/parser"
	"vidqueue/app/resolver"
	"vidqueue/app/search"
	"vidqueue/app/tasks"
	"vidqueue/app/videos"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Info("No .env file found, using system environment variables")
		}
	}

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting vidqueue server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort,
		appCfg.DBUser, appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	userRepo := database.NewUserRepository(db)
	videoRepo := database.NewVideoRepository(db)
	progressRepo := database.NewProgressRepository(db)

	var metaCache cache.Cache
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(appCfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", appCfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		metaCache = redisCache
		slog.Info("Using Redis metadata cache", "addr", appCfg.RedisAddr)
	} else {
		metaCache = cache.NewMemoryCache(512)
		slog.Info("Using in-memory metadata cache")
	}

	matcherCfg := matcher.DefaultConfig()
	if appCfg.MatcherFile != "" {
		matcherCfg, err = matcher.LoadConfig(appCfg.MatcherFile)
		if err != nil {
			slog.Warn("Failed to load matcher overrides, using defaults", "file", appCfg.MatcherFile, "error", err)
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	urlParser := parser.NewParser()
	metaResolver := resolver.NewResolver(httpClient, metaCache, appCfg.UserAgent, appCfg.VKServiceToken)
	searcher := search.NewSearcher(httpClient, appCfg.SearchEndpoint, appCfg.UserAgent)

	scheduler := tasks.NewScheduler(appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount)

	service := videos.NewService(urlParser, metaResolver, searcher, matcherCfg,
		scheduler, videoRepo, progressRepo)

	botClient := bot.NewClient(httpClient, appCfg.BotToken)
	webhookHandler := bot.NewHandler(botClient, service, userRepo)
	apiHandler := api.NewHandler(service, videoRepo, userRepo)
	server := api.NewServer(apiHandler, webhookHandler, userRepo, appCfg.BotToken)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
