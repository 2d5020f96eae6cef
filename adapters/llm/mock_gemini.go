package llm

import (
	"context"

	"github.com/darijacast/server/domain/repositories"
)

// MockGeminiClient is a placeholder conversion model for keyless development
type MockGeminiClient struct{}

// NewMockGeminiClient creates a new mock Gemini client
func NewMockGeminiClient() repositories.LargeLanguageModel {
	return &MockGeminiClient{}
}

// Generate implements repositories.LargeLanguageModel
func (g *MockGeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	// Canned Darija reply so the pipeline stays exercisable without an API key
	return "شكرا بزاف على الدعم ديالك", nil
}
