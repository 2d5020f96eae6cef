package usecase

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/darijacast/server/domain/repositories"
)

// maxNormalizedLength caps converted text to what the synthesis provider
// accepts for a single announcement.
const maxNormalizedLength = 190

var (
	digitQuotePattern = regexp.MustCompile(`(\d)'`)
	boldSpanPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// pictographs covers the emoji and pictographic blocks stripped before
// conversion. Variation selectors and the ZWJ used in emoji sequences are
// included so composed emoji vanish completely.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1},
		{Lo: 0xFE0E, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1},
	},
}

// Normalizer converts informal mixed-script donor text into Darija in Arabic
// script. It never returns an error: remote failures fall back to the cleaned
// original text so an announcement is always possible.
type Normalizer struct {
	llm    repositories.LargeLanguageModel
	cache  repositories.TranslationCache
	prompt string
	logger *zap.Logger
}

// NewNormalizer creates a normalizer. An empty prompt selects the default
// conversion instruction set.
func NewNormalizer(
	llm repositories.LargeLanguageModel,
	cache repositories.TranslationCache,
	prompt string,
	logger *zap.Logger,
) *Normalizer {
	if prompt == "" {
		prompt = DefaultConversionPrompt
	}
	return &Normalizer{
		llm:    llm,
		cache:  cache,
		prompt: prompt,
		logger: logger,
	}
}

// Normalize runs the conversion pipeline: pre-clean, cache lookup, remote
// conversion, post-clean, cache store. An empty return value means the
// message reduced to nothing and audio must be suppressed; it is not an error.
func (n *Normalizer) Normalize(ctx context.Context, text string) string {
	cleaned := Clean(text)
	if cleaned == "" {
		return ""
	}

	if cached, ok := n.cache.Get(cleaned); ok {
		return cached
	}

	raw, err := n.llm.Generate(ctx, n.prompt+"\n\nMessage: "+cleaned)
	if err != nil {
		// Not cached, so the next identical message retries the conversion
		n.logger.Warn("Text conversion failed, announcing original text",
			zap.Error(err))
		return cleaned
	}

	result := refine(raw)
	if result == "" {
		n.logger.Warn("Text conversion produced nothing usable, announcing original text")
		return cleaned
	}

	n.cache.Set(cleaned, result)
	return result
}

// Clean strips pictographic code points and the apostrophe some donors append
// to quoted numerals (e.g. 94'), then trims whitespace.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.Is(pictographs, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := digitQuotePattern.ReplaceAllString(b.String(), "$1")
	return strings.TrimSpace(cleaned)
}

// refine extracts the usable answer from a raw model reply: the first
// emphasized span when the model added markup, otherwise the first non-empty
// line, hard-capped to the synthesis length limit.
func refine(raw string) string {
	answer := raw

	if match := boldSpanPattern.FindStringSubmatch(answer); match != nil {
		answer = match[1]
	}

	for _, line := range strings.Split(answer, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			answer = trimmed
			break
		}
	}
	answer = strings.TrimSpace(answer)

	if runes := []rune(answer); len(runes) > maxNormalizedLength {
		answer = string(runes[:maxNormalizedLength])
	}

	return answer
}
