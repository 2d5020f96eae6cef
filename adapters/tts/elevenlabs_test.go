package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}

	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}

	if tts.outputFormat != defaultOutputFormat {
		t.Errorf("Expected default output format '%s', got '%s'", defaultOutputFormat, tts.outputFormat)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	valid := ElevenLabsConfig{APIKey: "key", Stability: 0.5, Clarity: 0.75}
	if err := ValidateElevenLabsConfig(valid); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	badStability := ElevenLabsConfig{APIKey: "key", Stability: 1.5}
	if err := ValidateElevenLabsConfig(badStability); err == nil {
		t.Error("Expected error for stability out of range")
	}

	badChunk := ElevenLabsConfig{APIKey: "key", ChunkSize: -1}
	if err := ValidateElevenLabsConfig(badChunk); err == nil {
		t.Error("Expected error for negative chunk size")
	}
}

func TestElevenLabsTTS_EmptyText(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if _, err := tts.ConvertTextToSpeech(context.Background(), "   "); err == nil {
		t.Error("Expected error for blank text")
	}
}

func TestElevenLabsTTS_StreamsAudio(t *testing.T) {
	logger := zaptest.NewLogger(t)

	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(payload)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
		ChunkSize:  1024,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	audioChan, err := tts.ConvertTextToSpeech(context.Background(), "صباح الخير")
	if err != nil {
		t.Fatalf("ConvertTextToSpeech failed: %v", err)
	}

	var received []byte
	for chunk := range audioChan {
		received = append(received, chunk...)
	}

	if len(received) != len(payload) {
		t.Errorf("Expected %d audio bytes, got %d", len(payload), len(received))
	}
}

func TestElevenLabsTTS_RemoteErrorBeforeStream(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if _, err := tts.ConvertTextToSpeech(context.Background(), "hello"); err == nil {
		t.Error("Expected error when API responds with non-200 status")
	}
}

func TestElevenLabsTTS_SetVoiceSettings(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	tts.SetVoiceSettings(0.8, 0.9)

	if tts.stability != 0.8 {
		t.Errorf("Expected stability 0.8, got %f", tts.stability)
	}

	if tts.clarity != 0.9 {
		t.Errorf("Expected clarity 0.9, got %f", tts.clarity)
	}

	tts.SetVoiceID("new-voice-id")
	if tts.voiceID != "new-voice-id" {
		t.Errorf("Expected voice ID 'new-voice-id', got '%s'", tts.voiceID)
	}
}
