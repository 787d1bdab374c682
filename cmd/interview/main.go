package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/config"
	"alfredoptarigan/ats-analyzer/internal/interview"
	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New("interview", cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The service still serves questions without a model; evaluation then
	// reports the AI service as unavailable.
	var gemini services.GeminiService
	if cfg.Gemini.APIKey == "" {
		zlog.Warn("⚠️ GEMINI_API_KEY not set, answer evaluation is disabled")
	} else {
		gemini, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, zlog.Named("gemini"))
		if err != nil {
			zlog.Fatal("❌ Failed to initialize Gemini", zap.Error(err))
		}
		zlog.Info("✅ Gemini initialized", zap.String("model", cfg.Gemini.Model))
	}

	coach := interview.NewCoach(gemini, zlog.Named("coach"))
	server := interview.NewServer(interview.NewQuestionBank(), coach, zlog.Named("interview"))

	app := server.App()

	go func() {
		<-ctx.Done()
		zlog.Info("🛑 Shutting down interview service...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("❌ Interview service forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Interview.Port)
	zlog.Info("🚀 Interview service starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start interview service", zap.Error(err))
	}
}
