// Command listener is a headless announcement client: it connects to the
// server's websocket, queues incoming donations and drains them one at a
// time the way the browser player does, fetching each audio resource over
// HTTP. Useful for driving the pipeline without a browser.
package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/darijacast/server/internal/playback"
)

type inboundMessage struct {
	Type           string  `json:"type"`
	PaymentID      string  `json:"payment_id"`
	DonorName      string  `json:"donor_name"`
	Amount         float64 `json:"amount"`
	Asset          string  `json:"asset"`
	NormalizedText string  `json:"normalized_text"`
	AudioURL       string  `json:"audio_url"`
	Threshold      int     `json:"threshold"`
}

func main() {
	godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "/ws"
	if token := os.Getenv("OVERLAY_TOKEN"); token != "" {
		wsURL += "?token=" + url.QueryEscape(token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		logger.Fatal("Failed to connect", zap.String("url", wsURL), zap.Error(err))
	}
	defer conn.Close()

	logger.Info("Connected", zap.String("url", wsURL))

	var writeMu sync.Mutex
	reportFinished := func(item playback.Item) {
		writeMu.Lock()
		defer writeMu.Unlock()
		message := map[string]string{"type": "audioFinished"}
		if err := conn.WriteJSON(message); err != nil {
			logger.Warn("Failed to report playback completion", zap.Error(err))
		}
	}

	// "Playing" here means downloading the full audio stream; a real speaker
	// sink can be swapped in behind the same function.
	play := func(ctx context.Context, audioURL string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+audioURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		written, err := io.Copy(io.Discard, resp.Body)
		logger.Info("Played announcement",
			zap.String("audioURL", audioURL),
			zap.Int64("bytes", written))
		return err
	}

	scheduler := playback.NewScheduler(play, reportFinished, logger)
	// Headless clients have no autoplay restriction to satisfy
	scheduler.Unlock()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal("Connection closed", zap.Error(err))
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Warn("Unparseable message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "donation":
			logger.Info("Donation received",
				zap.String("donor", msg.DonorName),
				zap.Float64("amount", msg.Amount),
				zap.String("text", msg.NormalizedText))
			scheduler.Enqueue(playback.Item{
				PaymentID: msg.PaymentID,
				DonorName: msg.DonorName,
				Text:      msg.NormalizedText,
				AudioURL:  msg.AudioURL,
			})
		case "donation_nomessage":
			logger.Info("Donation without message",
				zap.String("donor", msg.DonorName),
				zap.Float64("amount", msg.Amount),
				zap.String("asset", msg.Asset))
		case "threshold_update":
			logger.Info("Threshold changed", zap.Int("threshold", msg.Threshold))
		default:
			logger.Warn("Unknown message type", zap.String("type", msg.Type))
		}
	}
}
