package pipeline

import (
	"context"
	"errors"
	"time"

	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/logger"
	"go-book-study/internal/observer"
	"go-book-study/internal/report"
	"go-book-study/pkg/models"
	"go-book-study/pkg/validation"

	"github.com/sirupsen/logrus"
)

// State is one phase of a pipeline run.
type State string

const (
	StateCollecting     State = "collecting"
	StateExtractingText State = "extracting_text"
	StateAnalyzing      State = "analyzing"
	StateAssembling     State = "assembling"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// previewLimit bounds the preview strings returned alongside the
// report.
const previewLimit = 500

// previewEllipsis marks a truncated preview.
const previewEllipsis = "..."

// Orchestrator sequences one run through its stages: validation, text
// extraction, the three independent analysis stages, and assembly. A
// run is synchronous and owns its request exclusively; terminal states
// are reported once and the orchestrator is not resumable.
type Orchestrator struct {
	executor  *Executor
	assembler report.Assembler
	validator *validation.BatchValidator
	events    observer.Subject
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(
	executor *Executor,
	assembler report.Assembler,
	validator *validation.BatchValidator,
	events observer.Subject,
) *Orchestrator {
	return &Orchestrator{
		executor:  executor,
		assembler: assembler,
		validator: validator,
		events:    events,
	}
}

// Run processes one batch of uploads to a terminal outcome. Rejections
// happen before any external call; extraction failure across all pages
// fails the run; any other stage failure degrades its own report field
// only.
func (o *Orchestrator) Run(ctx context.Context, uploads []validation.RawUpload) models.RunOutcome {
	start := time.Now()
	o.notify(ctx, observer.RunEvent{
		EventType: observer.RunStarted,
		Timestamp: start,
		PageCount: len(uploads),
		Success:   true,
	})

	// Collecting: validate the batch before touching the service.
	req, err := o.validator.ValidateBatch(uploads)
	if err != nil {
		o.notify(ctx, observer.RunEvent{
			EventType:    observer.RunRejected,
			Timestamp:    time.Now(),
			PageCount:    len(uploads),
			ErrorMessage: err.Error(),
		})
		return models.RunOutcome{
			Status: models.RunRejected,
			Reason: rejectionReason(err),
		}
	}

	o.logTransition(StateCollecting, StateExtractingText, len(req.Pages))

	// ExtractingText: the hard dependency for everything downstream.
	pageTexts := o.executor.ExtractPages(ctx, req.Pages)
	doc, ok := MergePages(pageTexts)
	if !ok {
		o.notify(ctx, observer.RunEvent{
			EventType:    observer.RunFailed,
			Timestamp:    time.Now(),
			PageCount:    len(req.Pages),
			ErrorMessage: apperrors.ErrNoExtractableText.Error(),
		})
		return models.RunOutcome{
			Status: models.RunFailed,
			Reason: "テキストを抽出できませんでした。より鮮明な画像で再度お試しください。",
		}
	}

	o.notify(ctx, observer.RunEvent{
		EventType: observer.StageCompleted,
		Timestamp: time.Now(),
		Stage:     StageExtractText,
		PageCount: len(req.Pages),
		Success:   true,
	})
	o.logTransition(StateExtractingText, StateAnalyzing, len(req.Pages))

	// Analyzing: translation, vocabulary and grammar run concurrently
	// and are joined before assembly. Individual failures have already
	// degraded their own fields inside the executor.
	down := o.executor.RunDownstream(ctx, doc)
	degraded := make(map[string]bool, len(down.DegradedStages))
	for _, stage := range down.DegradedStages {
		degraded[stage] = true
		o.notify(ctx, observer.RunEvent{
			EventType: observer.StageDegraded,
			Timestamp: time.Now(),
			Stage:     stage,
		})
	}
	for _, stage := range []string{StageTranslate, StageVocabulary, StageGrammar} {
		if !degraded[stage] {
			o.notify(ctx, observer.RunEvent{
				EventType: observer.StageCompleted,
				Timestamp: time.Now(),
				Stage:     stage,
				Success:   true,
			})
		}
	}

	o.logTransition(StateAnalyzing, StateAssembling, len(req.Pages))

	// Assembling: pure transformation, no external calls.
	result := models.AnalysisResult{
		DocumentText:        doc,
		PageTexts:           pageTexts,
		Translation:         down.Translation,
		TranslationDegraded: down.TranslationDegraded,
		Vocabulary:          down.Vocabulary,
		Grammar:             down.Grammar,
	}
	rendered := o.assembler.Assemble(result, time.Now())

	o.notify(ctx, observer.RunEvent{
		EventType: observer.RunCompleted,
		Timestamp: time.Now(),
		PageCount: len(req.Pages),
		Success:   true,
		Metadata: map[string]interface{}{
			"duration_ms":      time.Since(start).Milliseconds(),
			"vocabulary_count": len(result.Vocabulary),
			"grammar_count":    len(result.Grammar),
			"report_format":    rendered.Format,
		},
	})

	return models.RunOutcome{
		Status:             models.RunDone,
		Report:             &rendered,
		PreviewOriginal:    preview(result.DocumentText),
		PreviewTranslation: preview(result.Translation),
		VocabularyCount:    len(result.Vocabulary),
		GrammarCount:       len(result.Grammar),
	}
}

func (o *Orchestrator) notify(ctx context.Context, event observer.RunEvent) {
	if o.events != nil {
		o.events.NotifyObservers(ctx, event)
	}
}

func (o *Orchestrator) logTransition(from, to State, pages int) {
	logger.WithFields(logrus.Fields{
		"from":  string(from),
		"to":    string(to),
		"pages": pages,
	}).Debug("Pipeline state transition")
}

// rejectionReason unwraps the user-facing message from a rejection
// error, falling back to the raw error text.
func rejectionReason(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// preview returns at most previewLimit runes of s, with an ellipsis
// appended only when truncation happened.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + previewEllipsis
}
