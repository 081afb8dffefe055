package language

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/logger"
	"go-book-study/pkg/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	client     *genai.Client
	model      string
	inputLimit int
	limiter    *rate.Limiter
}

// NewGeminiClient creates a Gemini-backed analysis client. The API key
// is required; a missing key is reported as an unauthorized capability
// state so the caller can fall back instead of crashing.
func NewGeminiClient(apiKey, model string, inputLimit int, rps float64) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.NewUnauthorizedError("GEMINI_API_KEY is not configured", apperrors.ErrCapabilityUnavailable)
	}
	if rps <= 0 {
		rps = 2
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, classifyServiceError(err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		inputLimit: inputLimit,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// ExtractText sends one page image to the vision model.
func (c *GeminiClient) ExtractText(ctx context.Context, page models.PageImage) (string, error) {
	mime := page.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(extractTextPrompt),
		{InlineData: &genai.Blob{MIMEType: mime, Data: page.Data}},
	}

	return c.generate(ctx, parts)
}

// Translate sends the full document text for translation.
func (c *GeminiClient) Translate(ctx context.Context, text string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(translatePrompt + "\n\n" + text),
	}
	return c.generate(ctx, parts)
}

// ExtractVocabulary requests the structured word list. Input is
// truncated to the configured rune limit (see Client docs).
func (c *GeminiClient) ExtractVocabulary(ctx context.Context, text string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(vocabularyPrompt + "\n\n" + truncateRunes(text, c.inputLimit)),
	}
	return c.generate(ctx, parts)
}

// ExtractGrammarPatterns requests the structured pattern list. Input is
// truncated to the configured rune limit (see Client docs).
func (c *GeminiClient) ExtractGrammarPatterns(ctx context.Context, text string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(grammarPrompt + "\n\n" + truncateRunes(text, c.inputLimit)),
	}
	return c.generate(ctx, parts)
}

// Backend returns the backend name
func (c *GeminiClient) Backend() string {
	return "gemini"
}

// Close releases the underlying API client. The genai client holds no
// resources that require explicit release.
func (c *GeminiClient) Close() error {
	return nil
}

// generate performs one rate-limited inference call and returns the
// concatenated text parts of the first candidate.
func (c *GeminiClient) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperrors.NewTimeoutError("rate limiter wait aborted", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"model": c.model,
		}).Error("Inference call failed")
		return "", classifyServiceError(err)
	}

	return responseText(resp), nil
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// classifyServiceError maps a raw service error onto the application
// error taxonomy so the pipeline can decide between degradation and
// failure without string-matching messages.
func classifyServiceError(err error) *apperrors.AppError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return apperrors.NewUnauthorizedError("analysis service rejected the credential", err)
		case apiErr.Code == http.StatusTooManyRequests:
			return apperrors.NewRateLimitedError("analysis service throttled the call", err)
		default:
			return apperrors.NewProcessingError("analysis service call failed", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("analysis service call timed out", err)
	}

	return apperrors.NewNetworkError("analysis service unreachable", err)
}
