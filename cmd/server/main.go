package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/darijacast/server/adapters/cache"
	"github.com/darijacast/server/adapters/llm"
	"github.com/darijacast/server/adapters/tts"
	"github.com/darijacast/server/domain/repositories"
	"github.com/darijacast/server/internal/api"
	"github.com/darijacast/server/internal/websocket"
	"github.com/darijacast/server/usecase"
)

func main() {
	godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Translation cache
	cacheSize := 0
	if sizeStr := os.Getenv("TRANSLATION_CACHE_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil {
			cacheSize = size
		}
	}
	translationCache, err := cache.NewLRUTranslationCache(cacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to create translation cache", zap.Error(err))
	}

	// Conversion model: real Gemini when a key is configured, mock otherwise
	var llmService repositories.LargeLanguageModel
	if os.Getenv("GEMINI_API_KEY") != "" {
		llmService, err = llm.NewGeminiLLM(llm.NewGeminiConfigFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to create Gemini client", zap.Error(err))
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, using mock conversion model")
		llmService = llm.NewMockGeminiClient()
	}

	// Speech synthesis: real Eleven Labs when a key is configured
	var ttsService repositories.TextToSpeech
	if os.Getenv("ELEVEN_LABS_API_KEY") != "" {
		ttsService, err = tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to create Eleven Labs client", zap.Error(err))
		}
	} else {
		logger.Warn("ELEVEN_LABS_API_KEY not set, using mock speech synthesis")
		ttsService = tts.NewMockTextToSpeech(logger)
	}

	// Pipeline services
	normalizer := usecase.NewNormalizer(llmService, translationCache, os.Getenv("CONVERSION_PROMPT"), logger)

	initialThreshold := 0
	if thresholdStr := os.Getenv("MIN_GATED_AMOUNT"); thresholdStr != "" {
		if threshold, err := strconv.Atoi(thresholdStr); err == nil && threshold >= 0 {
			initialThreshold = threshold
		}
	}
	threshold := usecase.NewThresholdStore(initialThreshold)

	hub := websocket.NewHub(threshold, logger)
	go hub.Run()

	announcer := usecase.NewAnnouncer(normalizer, hub, threshold, os.Getenv("GATED_ASSET"), logger)

	// Initialize API routes
	api.InitRoutes(e, hub, announcer, ttsService, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Donation announcer started",
		zap.String("port", port),
		zap.Int("threshold", threshold.Get()))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
