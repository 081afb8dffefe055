package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-book-study/internal/language"
	"go-book-study/internal/logger"
	"go-book-study/internal/normalize"
	"go-book-study/pkg/models"

	"github.com/arbovm/levenshtein"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Stage names used in logs and events.
const (
	StageExtractText = "extract_text"
	StageTranslate   = "translate"
	StageVocabulary  = "extract_vocabulary"
	StageGrammar     = "extract_grammar_patterns"
)

// pageDelimiter separates pages inside the merged document text.
const pageDelimiter = "\n\n"

// Executor applies one analysis capability per input item, collecting
// successes and recording per-item failures without aborting the
// batch. It performs no retries; a failed call is terminal within the
// run.
type Executor struct {
	client       language.Client
	pool         *WorkerPool
	stageTimeout time.Duration
}

// NewExecutor creates an executor with a bounded extraction pool.
// stageTimeout bounds each individual service call; zero disables the
// per-call deadline.
func NewExecutor(client language.Client, concurrency int, stageTimeout time.Duration) *Executor {
	pool := NewWorkerPool(concurrency)
	pool.Start()

	return &Executor{
		client:       client,
		pool:         pool,
		stageTimeout: stageTimeout,
	}
}

// callContext derives the context for one service call.
func (e *Executor) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.stageTimeout)
}

// Close shuts down the extraction pool and the analysis client.
func (e *Executor) Close() error {
	e.pool.Close()
	return e.client.Close()
}

// ExtractPages runs text extraction for every page. Calls run
// concurrently on the shared pool, but each result lands in the slot
// of its source index, so the output order is the original page order
// regardless of completion order.
func (e *Executor) ExtractPages(ctx context.Context, pages []models.PageImage) []models.PageText {
	results := make([]models.PageText, len(pages))

	var wg sync.WaitGroup
	for i := range pages {
		page := pages[i]
		wg.Add(1)
		e.pool.Submit(func() {
			defer wg.Done()
			results[page.Index] = e.extractOne(ctx, page)
		})
	}
	wg.Wait()

	return results
}

// extractOne performs one extraction call and normalizes its output.
// A failure is recorded on the page result, never returned.
func (e *Executor) extractOne(ctx context.Context, page models.PageImage) models.PageText {
	result := models.PageText{Index: page.Index}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	raw, err := e.client.ExtractText(callCtx, page)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"stage":    StageExtractText,
			"page":     page.Index,
			"filename": page.Filename,
		}).Warn("Page extraction failed")
		result.Err = err.Error()
		return result
	}

	text, ok := normalize.Text(raw)
	if !ok {
		logger.WithStage(StageExtractText).WithField("page", page.Index).Warn("Page yielded no text")
		result.Err = "no text recognized"
		return result
	}

	result.Text = text
	result.OK = true
	return result
}

// MergePages concatenates the successful page texts in original page
// order, blank-line separated. The boolean is false when no page
// succeeded, which the orchestrator treats as a terminal failure.
func MergePages(pages []models.PageText) (string, bool) {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.OK {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, pageDelimiter), true
}

// Downstream carries the outputs of the three stages that depend only
// on the merged document text.
type Downstream struct {
	Translation         string
	TranslationDegraded bool
	Vocabulary          []models.VocabularyEntry
	Grammar             []models.GrammarPattern
	DegradedStages      []string
}

// RunDownstream executes translation, vocabulary extraction and
// grammar extraction concurrently. The three stages are mutually
// independent: each failure degrades its own field only and is never
// propagated, so the group always waits for all three.
func (e *Executor) RunDownstream(ctx context.Context, doc string) Downstream {
	var (
		out Downstream
		mu  sync.Mutex
	)

	markDegraded := func(stage string) {
		mu.Lock()
		defer mu.Unlock()
		out.DegradedStages = append(out.DegradedStages, stage)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		translation, degraded := e.translate(gctx, doc)
		out.Translation = translation
		out.TranslationDegraded = degraded
		if degraded {
			markDegraded(StageTranslate)
		}
		return nil
	})

	g.Go(func() error {
		callCtx, cancel := e.callContext(gctx)
		defer cancel()

		raw, err := e.client.ExtractVocabulary(callCtx, doc)
		if err != nil {
			logger.WithError(err).WithStage(StageVocabulary).Warn("Vocabulary extraction degraded")
			markDegraded(StageVocabulary)
			return nil
		}
		out.Vocabulary = normalize.Vocabulary(raw)
		if len(out.Vocabulary) == 0 {
			logger.WithStage(StageVocabulary).Warn("Vocabulary payload unparsable")
			markDegraded(StageVocabulary)
		}
		return nil
	})

	g.Go(func() error {
		callCtx, cancel := e.callContext(gctx)
		defer cancel()

		raw, err := e.client.ExtractGrammarPatterns(callCtx, doc)
		if err != nil {
			logger.WithError(err).WithStage(StageGrammar).Warn("Grammar extraction degraded")
			markDegraded(StageGrammar)
			return nil
		}
		out.Grammar = normalize.GrammarPatterns(raw)
		if len(out.Grammar) == 0 {
			logger.WithStage(StageGrammar).Warn("Grammar payload unparsable")
			markDegraded(StageGrammar)
		}
		return nil
	})

	// Join point: all three stages finish before assembly begins.
	// The goroutines never return errors, so this cannot fail early.
	_ = g.Wait()

	return out
}

// translate runs the translation stage. On failure the document text
// is echoed back so the report never presents an absent translation;
// the degraded flag keeps the echo from masquerading as a real one.
func (e *Executor) translate(ctx context.Context, doc string) (string, bool) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	raw, err := e.client.Translate(callCtx, doc)
	if err != nil {
		logger.WithError(err).WithStage(StageTranslate).Warn("Translation degraded")
		return doc, true
	}

	translation, ok := normalize.Text(raw)
	if !ok {
		logger.WithStage(StageTranslate).Warn("Translation reply empty")
		return doc, true
	}

	if isEcho(doc, translation) {
		logger.WithStage(StageTranslate).Warn("Translation echoed the source text")
		return translation, true
	}

	return translation, false
}

// isEcho reports whether the service returned the source text back
// nearly unchanged instead of a translation.
func isEcho(source, translation string) bool {
	if source == translation {
		return true
	}

	longest := len(source)
	if len(translation) > longest {
		longest = len(translation)
	}
	if longest == 0 {
		return false
	}

	distance := levenshtein.Distance(source, translation)
	return float64(distance)/float64(longest) < 0.1
}
