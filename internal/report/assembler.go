// Package report renders an AnalysisResult into the final study
// report. Assembly is pure data transformation: no external calls, and
// deterministic output given the same result and timestamp.
package report

import (
	"time"

	"go-book-study/pkg/models"
)

// Assembler renders one report format. Section order is fixed for
// every implementation: header, original text, translation, grammar
// patterns, vocabulary.
type Assembler interface {
	Assemble(result models.AnalysisResult, now time.Time) models.Report
	Format() string
}

const (
	reportTitle    = "英語テキスト翻訳・学習レポート"
	createdAtLabel = "作成日時"

	sectionOriginal    = "原文（英語）"
	sectionTranslation = "日本語訳"
	sectionGrammar     = "文法パターン解説"
	sectionVocabulary  = "重要単語解説"

	degradedTranslationNote = "※自動翻訳を利用できなかったため、原文をそのまま掲載しています。"
	emptyGrammarNote        = "（文法パターンは抽出できませんでした）"
	emptyVocabularyNote     = "（重要単語は抽出できませんでした）"

	timestampLayout = "2006年01月02日 15:04"
	filenameLayout  = "20060102_150405"
)

// filename builds the timestamped report filename, mirroring the
// download name the web front end expects.
func filename(now time.Time, ext string) string {
	return "translation_report_" + now.Format(filenameLayout) + ext
}
