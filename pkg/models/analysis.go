package models

import "time"

// Level classifies vocabulary and grammar entries by learner proficiency.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Label returns the Japanese label used in rendered reports.
// Unknown values are passed through unchanged so that the report never
// hides what the analysis service actually said.
func (l Level) Label() string {
	switch l {
	case LevelBeginner:
		return "初級"
	case LevelIntermediate:
		return "中級"
	case LevelAdvanced:
		return "上級"
	default:
		return string(l)
	}
}

// PageImage is one uploaded page photograph.
// Index preserves the position within the incoming batch; all later
// ordering is derived from it, never from completion order.
type PageImage struct {
	Index    int
	Filename string
	MIMEType string
	Data     []byte
}

// AnalysisRequest represents one validated batch of page images.
// It is owned exclusively by a single pipeline run and is discarded
// when the run completes.
type AnalysisRequest struct {
	Pages []PageImage
}

// PageText is the text extraction outcome for a single page.
// Immutable once produced by the extraction stage.
type PageText struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	OK    bool   `json:"ok"`
	Err   string `json:"error,omitempty"`
}

// VocabularyEntry is one annotated word from the vocabulary stage.
type VocabularyEntry struct {
	Word               string `json:"word"`
	Definition         string `json:"definition"`
	Example            string `json:"example"`
	ExampleTranslation string `json:"example_translation"`
	Level              Level  `json:"level"`
}

// GrammarPattern is one annotated grammar construction from the
// grammar stage.
type GrammarPattern struct {
	Name         string   `json:"pattern"`
	Example      string   `json:"example"`
	Structure    string   `json:"structure"`
	Usage        string   `json:"usage"`
	Level        Level    `json:"level"`
	MoreExamples []string `json:"more_examples,omitempty"`
}

// AnalysisResult aggregates the outputs of all pipeline stages.
// It is built once per run and is the sole input to report assembly.
type AnalysisResult struct {
	DocumentText string     `json:"document_text"`
	PageTexts    []PageText `json:"page_texts"`

	Translation string `json:"translation"`
	// TranslationDegraded is set when the translation stage failed or
	// echoed the source text back; the report flags the section
	// instead of silently presenting the original as a translation.
	TranslationDegraded bool `json:"translation_degraded"`

	Vocabulary []VocabularyEntry `json:"vocabulary"`
	Grammar    []GrammarPattern  `json:"grammar"`
}

// Report is the rendered study report artifact.
type Report struct {
	Filename  string
	Content   []byte
	Format    string
	CreatedAt time.Time
}
