// Package transport exposes the analysis pipeline over HTTP: a small
// Japanese upload page, the multipart upload endpoint, and a health
// probe.
package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go-book-study/internal/config"
	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/logger"
	"go-book-study/internal/observer"
	"go-book-study/internal/pipeline"
	"go-book-study/pkg/models"
	"go-book-study/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const uploadFieldName = "files"

const indexPage = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>英語本翻訳・解説アプリ</title>
    <style>
        body { font-family: Arial, sans-serif; padding: 20px; background: #f0f0f0; }
        .container { max-width: 600px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; }
        h1 { color: #333; text-align: center; }
        .upload-area { border: 2px dashed #ccc; padding: 40px; text-align: center; margin: 20px 0; }
        .btn { background: #007bff; color: white; padding: 10px 20px; border: none; border-radius: 5px; cursor: pointer; }
        .btn:hover { background: #0056b3; }
        .note { color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>📚 英語本翻訳・解説アプリ</h1>
        <p class="note">英語の本のページ写真（最大20枚）をアップロードしてください。</p>
        <form action="/upload" method="post" enctype="multipart/form-data">
            <div class="upload-area">
                <input type="file" name="files" accept="image/*" multiple required>
            </div>
            <div style="text-align: center;">
                <button class="btn" type="submit">翻訳・解説レポートを作成</button>
            </div>
        </form>
    </div>
</body>
</html>
`

// NewHandler wires the HTTP routes around one orchestrator instance.
// backend names the analysis client actually serving requests, which
// can differ from the configured one when the factory fell back.
func NewHandler(orch *pipeline.Orchestrator, metrics *observer.MetricsObserver, cfg *config.Config, backend string) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/", indexHandler)
	r.GET("/health", healthCheck(metrics, backend))
	r.POST("/upload", uploadHandler(orch, cfg))

	return r
}

func indexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

// uploadHandler accepts a multipart batch of page photos, runs the
// pipeline synchronously, and returns the assembled report inline as
// base64 so the browser can offer it as a download.
func uploadHandler(orch *pipeline.Orchestrator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing upload request")

		form, err := c.MultipartForm()
		if err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid multipart request")
			respondError(c, http.StatusBadRequest, "invalid multipart request", err)
			return
		}

		uploads, err := readUploads(form.File[uploadFieldName])
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "cannot read uploaded files", err)
			return
		}

		outcome := orch.Run(ctx, uploads)

		switch outcome.Status {
		case models.RunRejected:
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   http.StatusText(http.StatusBadRequest),
				Message: outcome.Reason,
			})
			return
		case models.RunFailed:
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Error:   http.StatusText(http.StatusUnprocessableEntity),
				Message: outcome.Reason,
			})
			return
		}

		logger.WithFields(logrus.Fields{
			"pages":              len(uploads),
			"vocabulary_count":   outcome.VocabularyCount,
			"grammar_count":      outcome.GrammarCount,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Upload processed successfully")

		c.JSON(http.StatusOK, models.UploadResponse{
			Status:         "success",
			OriginalText:   outcome.PreviewOriginal,
			TranslatedText: outcome.PreviewTranslation,
			WordCount:      outcome.VocabularyCount,
			GrammarCount:   outcome.GrammarCount,
			Filename:       outcome.Report.Filename,
			FileData:       base64.StdEncoding.EncodeToString(outcome.Report.Content),
		})
	}
}

// readUploads drains the multipart file headers into memory. Batch
// size and content checks happen later in validation; this only moves
// bytes.
func readUploads(headers []*multipart.FileHeader) ([]validation.RawUpload, error) {
	uploads := make([]validation.RawUpload, 0, len(headers))
	for _, header := range headers {
		data, err := readFileHeader(header)
		if err != nil {
			return nil, apperrors.NewRejectionError(
				fmt.Sprintf("cannot read uploaded file %s", header.Filename), err)
		}
		uploads = append(uploads, validation.RawUpload{
			Filename: header.Filename,
			Data:     data,
		})
	}
	return uploads, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func healthCheck(metrics *observer.MetricsObserver, backend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "available",
			"backend": backend,
			"metrics": metrics.Snapshot(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
