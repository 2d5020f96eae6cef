package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// fakeLLM records calls and returns a scripted reply
type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// mapCache is an unbounded in-memory TranslationCache for tests
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(key string) (string, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *mapCache) Set(key, value string) {
	c.entries[key] = value
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "sbah elkhir", "sbah elkhir"},
		{"emoji stripped", "merci 🙏🔥", "merci"},
		{"emoji only", "🔥🔥🔥", ""},
		{"flag emoji", "dima maghrib 🇲🇦", "dima maghrib"},
		{"digit quote", "3tit 94' drhm", "3tit 94 drhm"},
		{"quote not after digit", "l'maghrib", "l'maghrib"},
		{"whitespace only", "   \t ", ""},
		{"zwj sequence", "bravo 👨‍👩‍👧", "bravo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizer_EmptyAfterClean(t *testing.T) {
	llm := &fakeLLM{reply: "should not be called"}
	n := NewNormalizer(llm, newMapCache(), "", zap.NewNop())

	if got := n.Normalize(context.Background(), "🔥🔥"); got != "" {
		t.Errorf("Expected empty result for emoji-only message, got %q", got)
	}
	if llm.calls != 0 {
		t.Errorf("Expected no remote call for empty cleaned text, got %d", llm.calls)
	}
}

func TestNormalizer_CacheIdempotence(t *testing.T) {
	llm := &fakeLLM{reply: "صباح الخير"}
	n := NewNormalizer(llm, newMapCache(), "", zap.NewNop())

	first := n.Normalize(context.Background(), "sbah elkhir")
	second := n.Normalize(context.Background(), "sbah elkhir")

	if first != "صباح الخير" || second != first {
		t.Errorf("Expected identical cached result, got %q then %q", first, second)
	}
	if llm.calls != 1 {
		t.Errorf("Expected exactly one remote call, got %d", llm.calls)
	}
}

func TestNormalizer_RemoteFailureFallsBackUncached(t *testing.T) {
	llm := &fakeLLM{err: errors.New("provider down")}
	n := NewNormalizer(llm, newMapCache(), "", zap.NewNop())

	if got := n.Normalize(context.Background(), "sbah elkhir 🙏"); got != "sbah elkhir" {
		t.Errorf("Expected cleaned original text on failure, got %q", got)
	}

	// Failure is not cached: the next identical input retries the provider
	llm.err = nil
	llm.reply = "صباح الخير"
	if got := n.Normalize(context.Background(), "sbah elkhir 🙏"); got != "صباح الخير" {
		t.Errorf("Expected retry to succeed, got %q", got)
	}
	if llm.calls != 2 {
		t.Errorf("Expected two remote calls, got %d", llm.calls)
	}
}

func TestNormalizer_EmptyReplyFallsBack(t *testing.T) {
	llm := &fakeLLM{reply: "   \n  "}
	cache := newMapCache()
	n := NewNormalizer(llm, cache, "", zap.NewNop())

	if got := n.Normalize(context.Background(), "salam"); got != "salam" {
		t.Errorf("Expected cleaned input when reply is empty, got %q", got)
	}
	if len(cache.entries) != 0 {
		t.Error("Expected nothing cached for an empty reply")
	}
}

func TestRefine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold span extracted", "Here you go: **صباح الخير** hope it helps", "صباح الخير"},
		{"first non-empty line", "\n\nالسلام عليكم\nsecond line", "السلام عليكم"},
		{"plain reply", "صباح الخير", "صباح الخير"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refine(tt.input); got != tt.want {
				t.Errorf("refine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRefine_Truncation(t *testing.T) {
	long := strings.Repeat("سلام ", 100)
	got := refine(long)
	if runes := []rune(got); len(runes) > maxNormalizedLength {
		t.Errorf("Expected at most %d runes, got %d", maxNormalizedLength, len(runes))
	}
}
