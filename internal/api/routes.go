package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/darijacast/server/domain/entities"
	"github.com/darijacast/server/domain/repositories"
	"github.com/darijacast/server/internal/auth"
	"github.com/darijacast/server/internal/websocket"
)

// processTimeout bounds the detached pipeline run for one donation; it covers
// the conversion call including its retries.
const processTimeout = 90 * time.Second

// DonationProcessor consumes a validated donation after the webhook has been
// acknowledged.
type DonationProcessor interface {
	Process(ctx context.Context, event entities.DonationEvent)
}

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	hub *websocket.Hub,
	processor DonationProcessor,
	tts repositories.TextToSpeech,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "darijacast-server",
		})
	})

	// Player page for listeners
	e.File("/", "web/player.html")

	e.POST("/webhook", func(c echo.Context) error {
		return handleWebhook(c, processor, logger)
	})

	e.GET("/audio", func(c echo.Context) error {
		return handleAudio(c, tts, logger)
	})

	// Overlay token exchange, only meaningful when OVERLAY_SECRET is set
	v1 := e.Group("/api/v1")
	v1.POST("/overlay/auth", func(c echo.Context) error {
		return overlayAuth(c, logger)
	})

	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

// handleWebhook validates the donation payload, acknowledges the sender and
// hands the event to the pipeline. The acknowledgment never waits on the
// conversion or synthesis providers.
func handleWebhook(c echo.Context, processor DonationProcessor, logger *zap.Logger) error {
	var req WebhookRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind webhook request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = req.LegacyID
	}

	if paymentID == "" || req.Amount == nil || req.Asset == nil || req.Asset.Name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "paymentID, amount and asset are required",
		})
	}

	event := entities.DonationEvent{
		PaymentID: paymentID,
		Amount:    *req.Amount,
		Asset:     req.Asset.Name,
		Message:   req.Message,
	}
	if req.Donor != nil {
		event.DonorName = req.Donor.Username
	}

	logger.Info("Webhook accepted",
		zap.String("paymentID", event.PaymentID),
		zap.Float64("amount", event.Amount),
		zap.String("asset", event.Asset))

	// Fire-and-forget: the sender's 200 must not depend on anything past
	// validation, and a pipeline panic must not reach this handler.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Donation processing panicked",
					zap.String("paymentID", event.PaymentID),
					zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		processor.Process(ctx, event)
	}()

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleAudio streams synthesized speech for the given text. Bytes are
// relayed chunk by chunk; the whole payload is never held in memory.
func handleAudio(c echo.Context, tts repositories.TextToSpeech, logger *zap.Logger) error {
	text := c.QueryParam("text")
	if strings.TrimSpace(text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_text",
			Message: "text query parameter is required",
		})
	}

	audioChan, err := tts.ConvertTextToSpeech(c.Request().Context(), text)
	if err != nil {
		logger.Error("Speech synthesis failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "synthesis_failed",
			Message: "Failed to synthesize speech",
		})
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "audio/mpeg")
	response.WriteHeader(http.StatusOK)

	for chunk := range audioChan {
		if _, err := response.Write(chunk); err != nil {
			// Headers are gone; the client's audio element is the only
			// place this failure can surface.
			logger.Warn("Audio stream aborted", zap.Error(err))
			return nil
		}
		response.Flush()
	}

	return nil
}

// overlayAuth exchanges the shared overlay secret for a signed token
func overlayAuth(c echo.Context, logger *zap.Logger) error {
	if !auth.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "auth_disabled",
			Message: "Overlay authentication is not configured",
		})
	}

	var req OverlayAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	configured := os.Getenv("OVERLAY_SECRET")
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(configured)) != 1 {
		logger.Warn("Overlay authentication failed")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid overlay secret",
		})
	}

	clientID := uuid.NewString()
	token, err := auth.GenerateOverlayToken(clientID)
	if err != nil {
		logger.Error("Failed to generate overlay token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	return c.JSON(http.StatusOK, OverlayAuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

// websocketWithAuth gates the websocket behind overlay tokens when configured
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	if auth.Enabled() {
		token := c.QueryParam("token")
		if token == "" {
			logger.Warn("WebSocket connection rejected: missing token")
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Overlay token is required in the token query parameter",
			})
		}

		if _, err := auth.ValidateToken(token); err != nil {
			logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired overlay token",
			})
		}
	}

	return websocket.HandleWebSocket(hub, c, logger)
}
