package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go-book-study/internal/config"
	"go-book-study/internal/container"
	"go-book-study/internal/storage"
	"go-book-study/pkg/models"

	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [image-directory]",
		Short: "Analyze a batch of page photos and write the study report",
		Long: `Analyze reads up to 20 page photos, runs text extraction, Japanese
translation, grammar pattern explanation and vocabulary extraction,
and writes the assembled report next to the current directory.

Examples:
  # Analyze every image in a local directory
  bookstudy analyze ./scans

  # Analyze images stored in an Azure blob container
  bookstudy analyze --azure-container book-pages

  # Write a markdown report to a specific directory
  bookstudy analyze --format markdown --output ./reports ./scans`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("format", "f", "",
		"Report format: text or markdown (default from REPORT_FORMAT)")
	cmd.Flags().StringP("output", "o", ".",
		"Directory to write the report into (creates it if needed)")
	cmd.Flags().StringP("azure-container", "a", "",
		"Read pages from this Azure blob container instead of a local directory "+
			"(requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if format, err := cmd.Flags().GetString("format"); err == nil && format != "" {
		cfg.ReportFormat = format
	}

	source, err := buildSource(cmd, args)
	if err != nil {
		return err
	}

	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return runAnalyze(ctx, c, source, outputDir)
}

// buildSource picks the page source from the flags and arguments.
func buildSource(cmd *cobra.Command, args []string) (storage.PageSource, error) {
	containerName, err := cmd.Flags().GetString("azure-container")
	if err != nil {
		return nil, err
	}

	if containerName != "" {
		account := os.Getenv("AZURE_STORAGE_ACCOUNT")
		key := os.Getenv("AZURE_STORAGE_KEY")
		if account == "" || key == "" {
			return nil, errors.New("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set for --azure-container")
		}
		return storage.NewAzureSource(account, key, containerName)
	}

	if len(args) == 0 {
		return nil, errors.New("no input provided (specify an image directory or --azure-container)")
	}
	return storage.NewLocalSource(args[0]), nil
}

// runAnalyze loads the batch, runs the pipeline, and writes the report.
func runAnalyze(ctx context.Context, c *container.Container, source storage.PageSource, outputDir string) error {
	uploads, err := source.Load(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Analyzing %d page image(s)...\n", len(uploads))

	outcome := c.Orchestrator().Run(ctx, uploads)
	switch outcome.Status {
	case models.RunRejected:
		return fmt.Errorf("batch rejected: %s", outcome.Reason)
	case models.RunFailed:
		return fmt.Errorf("analysis failed: %s", outcome.Reason)
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportPath := filepath.Join(outputDir, outcome.Report.Filename)
	if err := os.WriteFile(reportPath, outcome.Report.Content, 0600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("Report written to %s\n", reportPath)
	fmt.Printf("Vocabulary entries: %d, grammar patterns: %d\n",
		outcome.VocabularyCount, outcome.GrammarCount)

	return nil
}
