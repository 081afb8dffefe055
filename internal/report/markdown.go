package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"go-book-study/pkg/models"

	"github.com/nao1215/markdown"
)

// MarkdownAssembler renders the report as GitHub-flavored markdown,
// with list sections as tables. Section order is identical to the
// plain-text format.
type MarkdownAssembler struct{}

// NewMarkdownAssembler creates the markdown assembler.
func NewMarkdownAssembler() *MarkdownAssembler {
	return &MarkdownAssembler{}
}

// Format returns the format name
func (a *MarkdownAssembler) Format() string {
	return "markdown"
}

// Assemble renders the report. Deterministic apart from the creation
// timestamp recorded once in the header.
func (a *MarkdownAssembler) Assemble(result models.AnalysisResult, now time.Time) models.Report {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1(reportTitle)
	md.PlainText(createdAtLabel + ": " + now.Format(timestampLayout))
	md.PlainText("")

	md.H2(sectionOriginal)
	md.PlainText(result.DocumentText)
	md.PlainText("")

	md.H2(sectionTranslation)
	if result.TranslationDegraded {
		md.PlainText(degradedTranslationNote)
		md.PlainText("")
	}
	md.PlainText(result.Translation)
	md.PlainText("")

	md.H2(sectionGrammar)
	if len(result.Grammar) == 0 {
		md.PlainText(emptyGrammarNote)
	} else {
		rows := make([][]string, 0, len(result.Grammar))
		for i, p := range result.Grammar {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				p.Name,
				p.Example,
				p.Structure,
				p.Usage,
				p.Level.Label(),
				strings.Join(p.MoreExamples, " / "),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "パターン", "例文", "構造", "解説", "レベル", "追加例文"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2(sectionVocabulary)
	if len(result.Vocabulary) == 0 {
		md.PlainText(emptyVocabularyNote)
	} else {
		rows := make([][]string, 0, len(result.Vocabulary))
		for i, w := range result.Vocabulary {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				w.Word,
				w.Definition,
				w.Example,
				w.ExampleTranslation,
				w.Level.Label(),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "単語", "意味", "例文", "例文訳", "レベル"},
			Rows:   rows,
		})
	}

	// Build cannot fail when writing into a bytes.Buffer.
	_ = md.Build()

	return models.Report{
		Filename:  filename(now, ".md"),
		Content:   buf.Bytes(),
		Format:    a.Format(),
		CreatedAt: now,
	}
}
