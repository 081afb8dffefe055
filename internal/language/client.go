package language

import (
	"context"

	"go-book-study/pkg/models"
)

// Client adapts the external language analysis service behind four
// capability calls. Implementations classify transport failures into
// the application error taxonomy and never retry; failure handling
// belongs to the pipeline.
type Client interface {
	// ExtractText recovers the English text embedded in one page
	// photograph. The returned text is raw service output; the
	// normalizer decides whether it is usable.
	ExtractText(ctx context.Context, page models.PageImage) (string, error)

	// Translate translates English text to Japanese. The full
	// document text is sent.
	Translate(ctx context.Context, text string) (string, error)

	// ExtractVocabulary returns an unvalidated textual payload that is
	// expected to contain a structured word list. Only the first
	// AnalysisInputLimit runes of the document are sent; vocabulary
	// from later pages may be omitted.
	ExtractVocabulary(ctx context.Context, text string) (string, error)

	// ExtractGrammarPatterns returns an unvalidated textual payload
	// expected to contain a structured pattern list. Input is
	// truncated the same way as ExtractVocabulary.
	ExtractGrammarPatterns(ctx context.Context, text string) (string, error)

	// Backend identifies the configured implementation for health
	// reporting.
	Backend() string

	// Lifecycle management
	Close() error
}

// truncateRunes caps s at limit runes. Rune-based so a multi-byte
// character is never split mid-sequence.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
