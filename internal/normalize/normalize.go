// Package normalize turns raw analysis-service payloads into validated
// data. Models wrap structured replies in prose or markdown fences at
// will, so every parser here is tolerant: garbage yields an empty
// collection, never an error.
package normalize

import (
	"encoding/json"
	"strings"

	"go-book-study/pkg/models"
)

const (
	maxVocabularyEntries = 20
	maxGrammarPatterns   = 15
)

// Text trims a plain-text capability reply. The boolean reports
// whether any usable text remains; an empty reply is an extraction
// failure for that item, not a pipeline abort.
func Text(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	return trimmed, trimmed != ""
}

// vocabularyPayload matches the shape requested from the service.
type vocabularyPayload struct {
	Words []vocabularyRecord `json:"words"`
}

type vocabularyRecord struct {
	Word               string `json:"word"`
	Definition         string `json:"definition"`
	Example            string `json:"example"`
	ExampleTranslation string `json:"example_translation"`
	Level              string `json:"level"`
}

// Vocabulary parses a raw vocabulary payload. Entries are unique by
// word, ordered as extracted, and capped at 20. Missing fields default
// to empty strings so one malformed record never discards the rest.
func Vocabulary(raw string) []models.VocabularyEntry {
	payload := extractStructuredPayload(raw)

	var records []vocabularyRecord
	var wrapped vocabularyPayload
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && len(wrapped.Words) > 0 {
		records = wrapped.Words
	} else if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil
	}

	seen := make(map[string]bool, len(records))
	entries := make([]models.VocabularyEntry, 0, len(records))
	for _, r := range records {
		word := strings.TrimSpace(r.Word)
		if word == "" {
			continue
		}
		key := strings.ToLower(word)
		if seen[key] {
			continue
		}
		seen[key] = true

		entries = append(entries, models.VocabularyEntry{
			Word:               word,
			Definition:         strings.TrimSpace(r.Definition),
			Example:            strings.TrimSpace(r.Example),
			ExampleTranslation: strings.TrimSpace(r.ExampleTranslation),
			Level:              Level(r.Level),
		})
		if len(entries) == maxVocabularyEntries {
			break
		}
	}
	return entries
}

// grammarPayload matches the shape requested from the service.
type grammarPayload struct {
	Patterns []grammarRecord `json:"patterns"`
}

type grammarRecord struct {
	Pattern      string   `json:"pattern"`
	Example      string   `json:"example"`
	Structure    string   `json:"structure"`
	Usage        string   `json:"usage"`
	Level        string   `json:"level"`
	MoreExamples []string `json:"more_examples"`
}

// GrammarPatterns parses a raw grammar payload, capped at 15 patterns
// in extraction order.
func GrammarPatterns(raw string) []models.GrammarPattern {
	payload := extractStructuredPayload(raw)

	var records []grammarRecord
	var wrapped grammarPayload
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && len(wrapped.Patterns) > 0 {
		records = wrapped.Patterns
	} else if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil
	}

	patterns := make([]models.GrammarPattern, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Pattern)
		if name == "" {
			continue
		}

		patterns = append(patterns, models.GrammarPattern{
			Name:         name,
			Example:      strings.TrimSpace(r.Example),
			Structure:    strings.TrimSpace(r.Structure),
			Usage:        strings.TrimSpace(r.Usage),
			Level:        Level(r.Level),
			MoreExamples: r.MoreExamples,
		})
		if len(patterns) == maxGrammarPatterns {
			break
		}
	}
	return patterns
}

// Level maps a free-form proficiency string from the service onto the
// known levels. Unknown values pass through unchanged.
func Level(raw string) models.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "beginner", "初級":
		return models.LevelBeginner
	case "intermediate", "中級":
		return models.LevelIntermediate
	case "advanced", "上級":
		return models.LevelAdvanced
	default:
		return models.Level(strings.TrimSpace(raw))
	}
}

// extractStructuredPayload locates the structured part of a reply:
// the first fenced code block if present, otherwise the outermost
// JSON object or array, otherwise the payload as-is.
func extractStructuredPayload(raw string) string {
	const fence = "```"

	cleaned := strings.TrimSpace(raw)

	start := strings.Index(cleaned, fence)
	if start == -1 {
		return sliceJSON(cleaned)
	}

	rest := cleaned[start+len(fence):]
	end := strings.Index(rest, fence)
	if end == -1 {
		return sliceJSON(cleaned)
	}

	content := strings.TrimSpace(rest[:end])

	// Remove the language identifier if present (e.g. "json")
	if lines := strings.SplitN(content, "\n", 2); len(lines) == 2 {
		first := strings.TrimSpace(lines[0])
		if first == "json" || first == "JSON" {
			content = lines[1]
		}
	}

	return strings.TrimSpace(content)
}

// sliceJSON cuts the outermost object or array out of surrounding
// prose. Returns the input untouched when no bracket pair is found.
func sliceJSON(s string) string {
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(s, pair[0])
		end := strings.LastIndex(s, pair[1])
		if start != -1 && end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
