package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/logger"
	"go-book-study/pkg/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
)

// supportedTypes are the raster formats accepted as page photographs.
var supportedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/bmp"}

// RawUpload is one file as received from the shell, before any
// validation has happened.
type RawUpload struct {
	Filename string
	Data     []byte
}

// BatchValidator turns raw uploads into a validated AnalysisRequest.
// Acceptance is decided by content sniffing and header decodability,
// not by file extension.
type BatchValidator struct {
	maxPages int
}

// NewBatchValidator creates a validator with the given batch bound.
func NewBatchValidator(maxPages int) *BatchValidator {
	if maxPages < 1 {
		maxPages = 20
	}
	return &BatchValidator{maxPages: maxPages}
}

// ValidateBatch checks the batch bounds, sniffs each file's type and
// verifies the image header decodes. Unsupported files are skipped
// with a log line, matching the upload form's lenient behavior; the
// batch is rejected only when empty, oversized, or without a single
// usable image. All rejections happen before any external call.
func (v *BatchValidator) ValidateBatch(uploads []RawUpload) (models.AnalysisRequest, error) {
	if len(uploads) == 0 {
		return models.AnalysisRequest{}, apperrors.NewRejectionError("no files were provided", nil)
	}
	if len(uploads) > v.maxPages {
		return models.AnalysisRequest{}, apperrors.NewRejectionError(
			fmt.Sprintf("at most %d pages can be processed per request (got %d)", v.maxPages, len(uploads)), nil)
	}

	pages := make([]models.PageImage, 0, len(uploads))
	for _, upload := range uploads {
		mime, ok := sniffImageType(upload.Data)
		if !ok {
			logger.WithFields(logrus.Fields{
				"filename": upload.Filename,
				"detected": mime,
			}).Warn("Skipping unsupported upload")
			continue
		}

		if _, _, err := image.DecodeConfig(bytes.NewReader(upload.Data)); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"filename": upload.Filename,
			}).Warn("Skipping undecodable upload")
			continue
		}

		pages = append(pages, models.PageImage{
			Index:    len(pages),
			Filename: upload.Filename,
			MIMEType: mime,
			Data:     upload.Data,
		})
	}

	if len(pages) == 0 {
		return models.AnalysisRequest{}, apperrors.NewRejectionError("no supported image files in the batch", nil)
	}

	return models.AnalysisRequest{Pages: pages}, nil
}

// sniffImageType returns the detected MIME type and whether it is one
// of the supported raster formats.
func sniffImageType(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for _, want := range supportedTypes {
		if detected.Is(want) {
			return want, true
		}
	}
	return detected.String(), false
}
