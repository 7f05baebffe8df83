package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/analyzer"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/scheduler"
	"github.com/truthfi/truthfi/internal/server"
	"github.com/truthfi/truthfi/internal/sources"
	"github.com/truthfi/truthfi/internal/trending"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting TruthFi analysis service")

	// Load scoring configuration. A bad catalog is fatal: starting with a
	// partial pattern set would silently under-report risk.
	scoring, err := config.LoadScoring(cfg.ScoringConfigPath)
	if err != nil {
		logrus.Fatalf("Failed to load scoring configuration: %v", err)
	}

	// Initialize social media sources
	srcs := []sources.Source{
		sources.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.Subreddits),
		sources.NewTwitterSource(cfg.TwitterBearerToken),
		sources.NewTelegramSource(cfg.TelegramBotToken),
	}
	for _, src := range srcs {
		logrus.Infof("Source %s enabled: %v", src.GetName(), src.IsEnabled())
	}

	// Initialize the analyzer and trending services
	analyzerService := analyzer.NewService(cfg, scoring, srcs)
	trendingService := trending.NewService(analyzerService.RecentPosts, cfg.TrendingPostSample)

	// Initialize scheduler for periodic trending refresh
	schedulerService := scheduler.NewService(cfg, trendingService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	srv := server.New(cfg, scoring, analyzerService, trendingService)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
