package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/config"
	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/services"
)

// Runs the resume text extractor over the files given on the command line
// and prints what the analyzer would receive.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: go run ./scripts/extract_text.go <file> [file...]\n")
		os.Exit(2)
	}

	cfg := config.Load()
	zlog, err := logger.New("extract-text", cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	extractor := services.NewTextExtractor(zlog.Named("extractor"))

	successCount := 0
	failCount := 0

	for _, path := range os.Args[1:] {
		name := filepath.Base(path)
		zlog.Info("📄 Processing", zap.String("file", name), zap.String("type", extractor.FileType(name)))

		if !extractor.IsSupported(name) {
			zlog.Warn("⚠️ Unsupported file type, skipping", zap.String("supported", services.SupportedTypesLabel))
			failCount++
			continue
		}

		text, err := extractor.ExtractFile(path, name)
		if err != nil {
			zlog.Error("❌ Failed to extract text", zap.String("code", string(services.CodeOf(err))), zap.Error(err))
			failCount++
			continue
		}

		zlog.Info("✅ Extracted text",
			zap.Int("characters", utf8.RuneCountInString(text)),
			zap.Int("sentences", len(services.SplitSentences(text))),
			zap.Bool("enough_for_analysis", utf8.RuneCountInString(text) >= cfg.Analysis.MinTextLength),
		)
		fmt.Println(text)
		successCount++
	}

	fmt.Fprintln(os.Stderr, strings.Repeat("=", 60))
	zlog.Info("📊 Extraction summary", zap.Int("successful", successCount), zap.Int("failed", failCount))

	if failCount > 0 {
		os.Exit(1)
	}
}
