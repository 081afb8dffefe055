// Package container wires the application dependency graph.
package container

import (
	"fmt"
	"net/http"

	"go-book-study/internal/config"
	"go-book-study/internal/factory"
	"go-book-study/internal/language"
	"go-book-study/internal/logger"
	"go-book-study/internal/observer"
	"go-book-study/internal/pipeline"
	"go-book-study/internal/report"
	"go-book-study/internal/transport"
	"go-book-study/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config       *config.Config
	client       language.Client
	executor     *pipeline.Executor
	assembler    report.Assembler
	orchestrator *pipeline.Orchestrator
	metrics      *observer.MetricsObserver
	handler      http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory()

	client, err := components.ClientFactory.CreateClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}

	assembler, err := components.AssemblerFactory.CreateAssembler(factory.FormatType(cfg.ReportFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to create report assembler: %w", err)
	}

	executor := pipeline.NewExecutor(client, cfg.OCRConcurrency, cfg.AnalysisTimeout)
	validator := validation.NewBatchValidator(cfg.MaxPages)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	orchestrator := pipeline.NewOrchestrator(executor, assembler, validator, events)
	handler := transport.NewHandler(orchestrator, metrics, cfg, client.Backend())

	return &Container{
		config:       cfg,
		client:       client,
		executor:     executor,
		assembler:    assembler,
		orchestrator: orchestrator,
		metrics:      metrics,
		handler:      handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Orchestrator returns the pipeline orchestrator
func (c *Container) Orchestrator() *pipeline.Orchestrator {
	return c.orchestrator
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the executor pool and the analysis client.
func (c *Container) Close() error {
	return c.executor.Close()
}
