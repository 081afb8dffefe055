package report

import (
	"fmt"
	"strings"
	"time"

	"go-book-study/pkg/models"
)

const (
	sectionRule = "========================================="
	entryRule   = "-----------------------------------------"
)

// TextAssembler renders the plain-text report, the format the original
// download link serves.
type TextAssembler struct{}

// NewTextAssembler creates the plain-text assembler.
func NewTextAssembler() *TextAssembler {
	return &TextAssembler{}
}

// Format returns the format name
func (a *TextAssembler) Format() string {
	return "text"
}

// Assemble renders the report. Deterministic apart from the creation
// timestamp recorded once in the header.
func (a *TextAssembler) Assemble(result models.AnalysisResult, now time.Time) models.Report {
	var sb strings.Builder

	sb.WriteString(reportTitle + "\n")
	sb.WriteString(createdAtLabel + ": " + now.Format(timestampLayout) + "\n\n")

	writeSection(&sb, sectionOriginal)
	sb.WriteString(result.DocumentText + "\n\n")

	writeSection(&sb, sectionTranslation)
	if result.TranslationDegraded {
		sb.WriteString(degradedTranslationNote + "\n")
	}
	sb.WriteString(result.Translation + "\n\n")

	writeSection(&sb, sectionGrammar)
	if len(result.Grammar) == 0 {
		sb.WriteString(emptyGrammarNote + "\n\n")
	}
	for i, p := range result.Grammar {
		if i > 0 {
			sb.WriteString(entryRule + "\n")
		}
		fmt.Fprintf(&sb, "%d. パターン: %s\n", i+1, p.Name)
		fmt.Fprintf(&sb, "   例文: %s\n", p.Example)
		fmt.Fprintf(&sb, "   構造: %s\n", p.Structure)
		fmt.Fprintf(&sb, "   解説: %s\n", p.Usage)
		fmt.Fprintf(&sb, "   レベル: %s\n", p.Level.Label())
		fmt.Fprintf(&sb, "   追加例文: %s\n", strings.Join(p.MoreExamples, " / "))
	}
	if len(result.Grammar) > 0 {
		sb.WriteString("\n")
	}

	writeSection(&sb, sectionVocabulary)
	if len(result.Vocabulary) == 0 {
		sb.WriteString(emptyVocabularyNote + "\n")
	}
	for i, w := range result.Vocabulary {
		if i > 0 {
			sb.WriteString(entryRule + "\n")
		}
		fmt.Fprintf(&sb, "%d. 単語: %s\n", i+1, w.Word)
		fmt.Fprintf(&sb, "   意味: %s\n", w.Definition)
		fmt.Fprintf(&sb, "   例文: %s\n", w.Example)
		fmt.Fprintf(&sb, "   例文訳: %s\n", w.ExampleTranslation)
		fmt.Fprintf(&sb, "   レベル: %s\n", w.Level.Label())
	}

	return models.Report{
		Filename:  filename(now, ".txt"),
		Content:   []byte(sb.String()),
		Format:    a.Format(),
		CreatedAt: now,
	}
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(sectionRule + "\n")
	sb.WriteString(title + "\n")
	sb.WriteString(sectionRule + "\n")
}
