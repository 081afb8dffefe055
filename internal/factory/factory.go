// Package factory creates the swappable components of the pipeline:
// the analysis client backend and the report assembler.
package factory

import (
	"fmt"

	"go-book-study/internal/config"
	"go-book-study/internal/language"
	"go-book-study/internal/logger"
	"go-book-study/internal/report"
)

// BackendType represents the analysis client backends
type BackendType string

const (
	// GeminiBackend uses the Gemini API for every capability
	GeminiBackend BackendType = "gemini"
	// TesseractBackend runs local OCR only
	TesseractBackend BackendType = "tesseract"
	// DemoBackend returns canned content, no external calls
	DemoBackend BackendType = "demo"
)

// FormatType represents the report output formats
type FormatType string

const (
	// TextFormat is the plain-text report
	TextFormat FormatType = "text"
	// MarkdownFormat is the markdown report
	MarkdownFormat FormatType = "markdown"
)

// ClientFactory creates analysis clients
type ClientFactory interface {
	CreateClient(cfg *config.Config) (language.Client, error)
}

// AssemblerFactory creates report assemblers
type AssemblerFactory interface {
	CreateAssembler(format FormatType) (report.Assembler, error)
}

type clientFactory struct{}

// NewClientFactory creates a new client factory
func NewClientFactory() ClientFactory {
	return &clientFactory{}
}

// CreateClient creates the analysis client for the configured backend.
// A gemini backend without an API key falls back to the demo client so
// the application still starts in local development.
func (f *clientFactory) CreateClient(cfg *config.Config) (language.Client, error) {
	switch BackendType(cfg.ClientBackend) {
	case GeminiBackend:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set, falling back to demo backend")
			return language.NewDemoClient(), nil
		}
		return language.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AnalysisInputLimit, cfg.RateLimitRPS)
	case TesseractBackend:
		return language.NewTesseractClient(), nil
	case DemoBackend:
		return language.NewDemoClient(), nil
	default:
		return nil, fmt.Errorf("unsupported client backend: %s", cfg.ClientBackend)
	}
}

type assemblerFactory struct{}

// NewAssemblerFactory creates a new assembler factory
func NewAssemblerFactory() AssemblerFactory {
	return &assemblerFactory{}
}

// CreateAssembler creates an assembler for the requested format
func (f *assemblerFactory) CreateAssembler(format FormatType) (report.Assembler, error) {
	switch format {
	case TextFormat:
		return report.NewTextAssembler(), nil
	case MarkdownFormat:
		return report.NewMarkdownAssembler(), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ClientFactory    ClientFactory
	AssemblerFactory AssemblerFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		ClientFactory:    NewClientFactory(),
		AssemblerFactory: NewAssemblerFactory(),
	}
}
