package language

import (
	"context"

	apperrors "go-book-study/internal/errors"
	"go-book-study/pkg/models"

	"github.com/otiai10/gosseract/v2"
)

// TesseractClient is a credential-free fallback backend. Text
// extraction runs against a local Tesseract installation; the three
// text-analysis capabilities are unavailable, so their stages degrade.
type TesseractClient struct {
	language string
}

// NewTesseractClient creates a local OCR client.
func NewTesseractClient() *TesseractClient {
	return &TesseractClient{language: "eng"}
}

// ExtractText runs local OCR on one page image.
func (c *TesseractClient) ExtractText(ctx context.Context, page models.PageImage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewTimeoutError("extraction aborted", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(c.language); err != nil {
		return "", apperrors.NewProcessingError("failed to configure OCR language", err)
	}
	if err := client.SetImageFromBytes(page.Data); err != nil {
		return "", apperrors.NewProcessingError("failed to load page image for OCR", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", apperrors.NewProcessingError("local OCR failed", err)
	}
	return text, nil
}

// Translate is unavailable without a service credential.
func (c *TesseractClient) Translate(ctx context.Context, text string) (string, error) {
	return "", apperrors.NewProcessingError("translation requires the remote analysis service", apperrors.ErrCapabilityUnavailable)
}

// ExtractVocabulary is unavailable without a service credential.
func (c *TesseractClient) ExtractVocabulary(ctx context.Context, text string) (string, error) {
	return "", apperrors.NewProcessingError("vocabulary extraction requires the remote analysis service", apperrors.ErrCapabilityUnavailable)
}

// ExtractGrammarPatterns is unavailable without a service credential.
func (c *TesseractClient) ExtractGrammarPatterns(ctx context.Context, text string) (string, error) {
	return "", apperrors.NewProcessingError("grammar extraction requires the remote analysis service", apperrors.ErrCapabilityUnavailable)
}

// Backend returns the backend name
func (c *TesseractClient) Backend() string {
	return "tesseract"
}

// Close releases client resources
func (c *TesseractClient) Close() error {
	return nil
}
