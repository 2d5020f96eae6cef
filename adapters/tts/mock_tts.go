package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/darijacast/server/domain/repositories"
)

// MockTextToSpeech is a placeholder synthesizer for keyless development and tests
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTextToSpeech{
		logger: logger,
	}
}

// ConvertTextToSpeech implements repositories.TextToSpeech
func (t *MockTextToSpeech) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	t.logger.Info("Producing mock speech", zap.Int("textLength", len(text)))

	// Deterministic bytes derived from the text, sized to roughly mimic audio
	audioSize := len(text) * 100
	mockAudio := make([]byte, audioSize)
	for i := range mockAudio {
		mockAudio[i] = byte((i + len(text)) % 256)
	}

	audioChan := make(chan []byte, 10)
	go func() {
		defer close(audioChan)
		chunkSize := 1024
		for start := 0; start < len(mockAudio); start += chunkSize {
			end := start + chunkSize
			if end > len(mockAudio) {
				end = len(mockAudio)
			}
			select {
			case audioChan <- mockAudio[start:end]:
			case <-ctx.Done():
				return
			}
		}
	}()

	return audioChan, nil
}
