package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"

	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/observer"
	"go-book-study/internal/report"
	"go-book-study/pkg/models"
	"go-book-study/pkg/validation"
)

func pngUpload(t *testing.T, name string) validation.RawUpload {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	return validation.RawUpload{Filename: name, Data: buf.Bytes()}
}

func newTestOrchestrator(client *fakeClient, events observer.Subject) (*Orchestrator, *Executor) {
	executor := NewExecutor(client, 2, 0)
	return NewOrchestrator(
		executor,
		report.NewTextAssembler(),
		validation.NewBatchValidator(20),
		events,
	), executor
}

func TestRun_RejectsEmptyBatchWithoutServiceCalls(t *testing.T) {
	client := &fakeClient{}
	orch, executor := newTestOrchestrator(client, nil)
	defer executor.Close()

	outcome := orch.Run(context.Background(), nil)

	if outcome.Status != models.RunRejected {
		t.Fatalf("Expected rejected, got %s", outcome.Status)
	}
	if outcome.Report != nil {
		t.Error("Expected no report on rejection")
	}
	if atomic.LoadInt64(&client.calls) != 0 {
		t.Errorf("Expected zero service calls, got %d", client.calls)
	}
}

func TestRun_RejectsOversizedBatchWithoutServiceCalls(t *testing.T) {
	client := &fakeClient{}
	orch, executor := newTestOrchestrator(client, nil)
	defer executor.Close()

	uploads := make([]validation.RawUpload, 21)
	for i := range uploads {
		uploads[i] = pngUpload(t, "page.png")
	}

	outcome := orch.Run(context.Background(), uploads)

	if outcome.Status != models.RunRejected {
		t.Fatalf("Expected rejected, got %s", outcome.Status)
	}
	if atomic.LoadInt64(&client.calls) != 0 {
		t.Errorf("Expected zero service calls, got %d", client.calls)
	}
}

func TestRun_FailsWhenNoPageYieldsText(t *testing.T) {
	client := &fakeClient{
		extractFn: func(models.PageImage) (string, error) {
			return "", apperrors.NewProcessingError("unreadable page", nil)
		},
	}
	orch, executor := newTestOrchestrator(client, nil)
	defer executor.Close()

	outcome := orch.Run(context.Background(), []validation.RawUpload{pngUpload(t, "page.png")})

	if outcome.Status != models.RunFailed {
		t.Fatalf("Expected failed, got %s", outcome.Status)
	}
	if outcome.Report != nil {
		t.Error("Expected no report on failure")
	}
	if outcome.Reason == "" {
		t.Error("Expected a user-facing failure reason")
	}
}

func TestRun_CompletesAndAssemblesReport(t *testing.T) {
	client := &fakeClient{}
	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(metrics)

	orch, executor := newTestOrchestrator(client, events)
	defer executor.Close()

	uploads := []validation.RawUpload{
		pngUpload(t, "page01.png"),
		pngUpload(t, "page02.png"),
	}

	outcome := orch.Run(context.Background(), uploads)

	if outcome.Status != models.RunDone {
		t.Fatalf("Expected done, got %s (%s)", outcome.Status, outcome.Reason)
	}
	if outcome.Report == nil {
		t.Fatal("Expected an assembled report")
	}
	if !strings.HasPrefix(outcome.Report.Filename, "translation_report_") {
		t.Errorf("Unexpected report filename %q", outcome.Report.Filename)
	}
	if !strings.HasSuffix(outcome.Report.Filename, ".txt") {
		t.Errorf("Expected .txt report, got %q", outcome.Report.Filename)
	}
	if outcome.VocabularyCount != 1 || outcome.GrammarCount != 1 {
		t.Errorf("Unexpected counts: vocab=%d grammar=%d", outcome.VocabularyCount, outcome.GrammarCount)
	}
	if !strings.Contains(outcome.PreviewOriginal, "page 0 text") {
		t.Errorf("Preview missing first page text: %q", outcome.PreviewOriginal)
	}
	if outcome.PreviewTranslation != "翻訳されたテキスト" {
		t.Errorf("Unexpected translation preview %q", outcome.PreviewTranslation)
	}

	content := string(outcome.Report.Content)
	for _, section := range []string{"原文（英語）", "日本語訳", "文法パターン解説", "重要単語解説"} {
		if !strings.Contains(content, section) {
			t.Errorf("Report missing section %q", section)
		}
	}

	snapshot := metrics.Snapshot()
	if snapshot["runs_total"] != 1 || snapshot["runs_completed"] != 1 {
		t.Errorf("Unexpected metrics: %v", snapshot)
	}
}

func TestRun_DegradedTranslationStillCompletes(t *testing.T) {
	client := &fakeClient{
		translateFn: func(string) (string, error) {
			return "", apperrors.NewNetworkError("translation down", nil)
		},
	}
	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(metrics)

	orch, executor := newTestOrchestrator(client, events)
	defer executor.Close()

	outcome := orch.Run(context.Background(), []validation.RawUpload{pngUpload(t, "page.png")})

	if outcome.Status != models.RunDone {
		t.Fatalf("Expected done despite degraded translation, got %s", outcome.Status)
	}
	if !strings.Contains(string(outcome.Report.Content), "※自動翻訳を利用できなかったため") {
		t.Error("Expected degraded translation note in report")
	}
	if metrics.Snapshot()["stages_degraded"] != 1 {
		t.Errorf("Expected 1 degraded stage, got %v", metrics.Snapshot())
	}
}

func TestPreview(t *testing.T) {
	short := "short text"
	if got := preview(short); got != short {
		t.Errorf("Expected short text untouched, got %q", got)
	}

	long := strings.Repeat("あ", 600)
	got := preview(long)
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated preview to end with ellipsis")
	}
	if runes := []rune(got); len(runes) != 503 {
		t.Errorf("Expected 503 runes, got %d", len(runes))
	}
}
