package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/config"
	"alfredoptarigan/ats-analyzer/internal/handlers"
	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New("api", cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("✅ Config loaded successfully",
		zap.String("env", cfg.Server.Env),
		zap.String("ai_service_url", cfg.AIService.URL),
		zap.Duration("advice_timeout", cfg.AIService.AdviceTimeout),
		zap.Duration("server_write_timeout", cfg.Server.WriteTimeout),
	)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}

	extractor := services.NewTextExtractor(zlog.Named("extractor"))

	// One pooled client for the AI service, closed on shutdown.
	aiHTTPClient := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	aiClient := services.NewAIClient(cfg.AIService.URL, aiHTTPClient, services.AITimeouts{
		Similarity: cfg.AIService.SimilarityTimeout,
		Advice:     cfg.AIService.AdviceTimeout,
		Health:     cfg.AIService.HealthTimeout,
	}, zlog.Named("ai"))

	analyzer := services.NewAnalyzer(aiClient, aiClient, zlog.Named("analyzer"))

	fetchHTTPClient := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	fetcher := services.NewJobFetcher(fetchHTTPClient, cfg.Fetcher.UserAgent, cfg.Fetcher.Timeout, zlog.Named("fetcher"))
	zlog.Info("✅ Services initialized successfully")

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(
		extractor,
		storageService,
		analyzer,
		cfg.Storage.MaxFileSize,
		cfg.Analysis.MinTextLength,
		zlog.Named("handlers"),
	)
	jobHandler := handlers.NewJobHandler(fetcher, zlog.Named("handlers"))
	healthHandler := handlers.NewHealthHandler(aiClient)
	zlog.Info("✅ Handlers initialized")

	app := handlers.NewApp(handlers.AppConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxFileSize:  cfg.Storage.MaxFileSize,
		AllowOrigins: cfg.Server.AllowOrigins,
		AccessLog:    true,
	}, handlers.Handlers{
		Health:  healthHandler,
		Analyze: analyzeHandler,
		Job:     jobHandler,
	}, zlog)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
		aiHTTPClient.CloseIdleConnections()
		fetchHTTPClient.CloseIdleConnections()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))
	zlog.Info(fmt.Sprintf("📖 API Documentation: http://localhost%s", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
