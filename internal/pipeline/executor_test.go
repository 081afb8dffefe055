package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "go-book-study/internal/errors"
	"go-book-study/pkg/models"
)

// fakeClient scripts per-capability behavior for executor tests.
type fakeClient struct {
	extractFn   func(page models.PageImage) (string, error)
	translateFn func(text string) (string, error)
	vocabFn     func(text string) (string, error)
	grammarFn   func(text string) (string, error)
	calls       int64
}

func (c *fakeClient) ExtractText(_ context.Context, page models.PageImage) (string, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.extractFn != nil {
		return c.extractFn(page)
	}
	return fmt.Sprintf("page %d text", page.Index), nil
}

func (c *fakeClient) Translate(_ context.Context, text string) (string, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.translateFn != nil {
		return c.translateFn(text)
	}
	return "翻訳されたテキスト", nil
}

func (c *fakeClient) ExtractVocabulary(_ context.Context, text string) (string, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.vocabFn != nil {
		return c.vocabFn(text)
	}
	return `{"words": [{"word": "sample", "definition": "見本"}]}`, nil
}

func (c *fakeClient) ExtractGrammarPatterns(_ context.Context, text string) (string, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.grammarFn != nil {
		return c.grammarFn(text)
	}
	return `{"patterns": [{"pattern": "sample pattern"}]}`, nil
}

func (c *fakeClient) Backend() string { return "fake" }
func (c *fakeClient) Close() error    { return nil }

func makePages(n int) []models.PageImage {
	pages := make([]models.PageImage, n)
	for i := range pages {
		pages[i] = models.PageImage{
			Index:    i,
			Filename: fmt.Sprintf("page%02d.png", i),
		}
	}
	return pages
}

func TestExtractPages_PreservesOrder(t *testing.T) {
	// Later pages finish first, so slot order diverges from completion
	// order.
	client := &fakeClient{
		extractFn: func(page models.PageImage) (string, error) {
			time.Sleep(time.Duration(8-page.Index) * 5 * time.Millisecond)
			return fmt.Sprintf("page %d text", page.Index), nil
		},
	}
	executor := NewExecutor(client, 4, 0)
	defer executor.Close()

	results := executor.ExtractPages(context.Background(), makePages(8))

	if len(results) != 8 {
		t.Fatalf("Expected 8 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("Result %d has index %d", i, r.Index)
		}
		if !r.OK {
			t.Errorf("Result %d not OK: %s", i, r.Err)
		}
		if r.Text != fmt.Sprintf("page %d text", i) {
			t.Errorf("Result %d has text %q", i, r.Text)
		}
	}
}

func TestExtractPages_PartialFailure(t *testing.T) {
	client := &fakeClient{
		extractFn: func(page models.PageImage) (string, error) {
			if page.Index == 1 {
				return "", apperrors.NewNetworkError("service unavailable", nil)
			}
			return fmt.Sprintf("page %d text", page.Index), nil
		},
	}
	executor := NewExecutor(client, 2, 0)
	defer executor.Close()

	results := executor.ExtractPages(context.Background(), makePages(3))

	if results[0].OK != true || results[2].OK != true {
		t.Error("Expected pages 0 and 2 to succeed")
	}
	if results[1].OK {
		t.Error("Expected page 1 to fail")
	}
	if results[1].Err == "" {
		t.Error("Expected page 1 to record its error")
	}
}

func TestExtractPages_EmptyReplyIsFailure(t *testing.T) {
	client := &fakeClient{
		extractFn: func(models.PageImage) (string, error) { return "  \n ", nil },
	}
	executor := NewExecutor(client, 1, 0)
	defer executor.Close()

	results := executor.ExtractPages(context.Background(), makePages(1))
	if results[0].OK {
		t.Error("Expected whitespace-only reply to count as a failure")
	}
}

func TestMergePages(t *testing.T) {
	tests := []struct {
		name   string
		pages  []models.PageText
		want   string
		wantOK bool
	}{
		{
			name: "all pages succeed",
			pages: []models.PageText{
				{Index: 0, Text: "first", OK: true},
				{Index: 1, Text: "second", OK: true},
			},
			want:   "first\n\nsecond",
			wantOK: true,
		},
		{
			name: "failed pages skipped",
			pages: []models.PageText{
				{Index: 0, Text: "first", OK: true},
				{Index: 1, Err: "blurry"},
				{Index: 2, Text: "third", OK: true},
			},
			want:   "first\n\nthird",
			wantOK: true,
		},
		{
			name: "all pages fail",
			pages: []models.PageText{
				{Index: 0, Err: "blurry"},
				{Index: 1, Err: "blurry"},
			},
			want:   "",
			wantOK: false,
		},
		{
			name:   "empty batch",
			pages:  nil,
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MergePages(tt.pages)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MergePages() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRunDownstream_AllSucceed(t *testing.T) {
	client := &fakeClient{}
	executor := NewExecutor(client, 1, 0)
	defer executor.Close()

	down := executor.RunDownstream(context.Background(), "The quick brown fox jumps over the lazy dog.")

	if down.TranslationDegraded {
		t.Error("Expected translation not degraded")
	}
	if down.Translation != "翻訳されたテキスト" {
		t.Errorf("Unexpected translation %q", down.Translation)
	}
	if len(down.Vocabulary) != 1 {
		t.Errorf("Expected 1 vocabulary entry, got %d", len(down.Vocabulary))
	}
	if len(down.Grammar) != 1 {
		t.Errorf("Expected 1 grammar pattern, got %d", len(down.Grammar))
	}
	if len(down.DegradedStages) != 0 {
		t.Errorf("Expected no degraded stages, got %v", down.DegradedStages)
	}
}

func TestRunDownstream_FailuresAreIndependent(t *testing.T) {
	doc := "The quick brown fox jumps over the lazy dog."
	client := &fakeClient{
		translateFn: func(string) (string, error) {
			return "", apperrors.NewNetworkError("translation down", nil)
		},
		vocabFn: func(string) (string, error) {
			return "", apperrors.NewRateLimitedError("throttled", nil)
		},
	}
	executor := NewExecutor(client, 1, 0)
	defer executor.Close()

	down := executor.RunDownstream(context.Background(), doc)

	// Translation degrades to the source text
	if !down.TranslationDegraded {
		t.Error("Expected translation degraded")
	}
	if down.Translation != doc {
		t.Errorf("Expected degraded translation to echo the document, got %q", down.Translation)
	}

	// Vocabulary degrades to empty
	if len(down.Vocabulary) != 0 {
		t.Errorf("Expected no vocabulary, got %d entries", len(down.Vocabulary))
	}

	// Grammar still succeeds
	if len(down.Grammar) != 1 {
		t.Errorf("Expected grammar to survive, got %d patterns", len(down.Grammar))
	}

	degraded := strings.Join(down.DegradedStages, ",")
	if !strings.Contains(degraded, StageTranslate) || !strings.Contains(degraded, StageVocabulary) {
		t.Errorf("Expected translate and vocabulary degraded, got %v", down.DegradedStages)
	}
	if strings.Contains(degraded, StageGrammar) {
		t.Errorf("Grammar should not be degraded, got %v", down.DegradedStages)
	}
}

func TestRunDownstream_EchoedTranslationIsDegraded(t *testing.T) {
	doc := "The quick brown fox jumps over the lazy dog."
	client := &fakeClient{
		translateFn: func(text string) (string, error) { return text, nil },
	}
	executor := NewExecutor(client, 1, 0)
	defer executor.Close()

	down := executor.RunDownstream(context.Background(), doc)
	if !down.TranslationDegraded {
		t.Error("Expected echoed translation to be flagged degraded")
	}
}

func TestRunDownstream_UnparsablePayloadDegrades(t *testing.T) {
	client := &fakeClient{
		vocabFn:   func(string) (string, error) { return "no json here", nil },
		grammarFn: func(string) (string, error) { return "also prose", nil },
	}
	executor := NewExecutor(client, 1, 0)
	defer executor.Close()

	down := executor.RunDownstream(context.Background(), "Some document text.")

	if len(down.Vocabulary) != 0 || len(down.Grammar) != 0 {
		t.Error("Expected empty collections for unparsable payloads")
	}
	if len(down.DegradedStages) != 2 {
		t.Errorf("Expected 2 degraded stages, got %v", down.DegradedStages)
	}
}

func TestIsEcho(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		translation string
		want        bool
	}{
		{"identical", "hello world", "hello world", true},
		{"nearly identical", "hello world out there", "hello world out therE", true},
		{"real translation", "The cat sat on the mat.", "猫がマットの上に座った。", false},
		{"both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEcho(tt.source, tt.translation); got != tt.want {
				t.Errorf("isEcho(%q, %q) = %v, want %v", tt.source, tt.translation, got, tt.want)
			}
		})
	}
}
