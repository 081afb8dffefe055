package validation

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	apperrors "go-book-study/internal/errors"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

func TestValidateBatch_EmptyBatch(t *testing.T) {
	_, err := NewBatchValidator(20).ValidateBatch(nil)
	if err == nil {
		t.Fatal("Expected error for empty batch")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeRejection) {
		t.Errorf("Expected rejection error, got %v", err)
	}
}

func TestValidateBatch_TooManyPages(t *testing.T) {
	uploads := make([]RawUpload, 21)
	data := encodePNG(t)
	for i := range uploads {
		uploads[i] = RawUpload{Filename: "page.png", Data: data}
	}

	_, err := NewBatchValidator(20).ValidateBatch(uploads)
	if err == nil {
		t.Fatal("Expected error for oversized batch")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeRejection) {
		t.Errorf("Expected rejection error, got %v", err)
	}
}

func TestValidateBatch_AcceptsSupportedFormats(t *testing.T) {
	uploads := []RawUpload{
		{Filename: "a.png", Data: encodePNG(t)},
		{Filename: "b.jpg", Data: encodeJPEG(t)},
	}

	req, err := NewBatchValidator(20).ValidateBatch(uploads)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(req.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(req.Pages))
	}
	if req.Pages[0].MIMEType != "image/png" || req.Pages[1].MIMEType != "image/jpeg" {
		t.Errorf("Unexpected MIME types: %s, %s", req.Pages[0].MIMEType, req.Pages[1].MIMEType)
	}
}

func TestValidateBatch_SkipsUnsupportedFiles(t *testing.T) {
	uploads := []RawUpload{
		{Filename: "notes.txt", Data: []byte("plain text, not an image")},
		{Filename: "page.png", Data: encodePNG(t)},
	}

	req, err := NewBatchValidator(20).ValidateBatch(uploads)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(req.Pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(req.Pages))
	}
	if req.Pages[0].Filename != "page.png" {
		t.Errorf("Expected the PNG to survive, got %q", req.Pages[0].Filename)
	}
	if req.Pages[0].Index != 0 {
		t.Errorf("Expected index 0 after skipping, got %d", req.Pages[0].Index)
	}
}

func TestValidateBatch_SkipsTruncatedImage(t *testing.T) {
	// PNG magic bytes only: sniffs as PNG, header does not decode
	uploads := []RawUpload{
		{Filename: "broken.png", Data: []byte("\x89PNG\r\n\x1a\n")},
		{Filename: "page.png", Data: encodePNG(t)},
	}

	req, err := NewBatchValidator(20).ValidateBatch(uploads)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(req.Pages) != 1 {
		t.Errorf("Expected truncated image to be skipped, got %d pages", len(req.Pages))
	}
}

func TestValidateBatch_RejectsWhenNothingUsable(t *testing.T) {
	uploads := []RawUpload{
		{Filename: "notes.txt", Data: []byte("plain text")},
	}

	_, err := NewBatchValidator(20).ValidateBatch(uploads)
	if err == nil {
		t.Fatal("Expected error when no file is usable")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeRejection) {
		t.Errorf("Expected rejection error, got %v", err)
	}
}

func TestValidateBatch_SequentialIndexes(t *testing.T) {
	uploads := []RawUpload{
		{Filename: "skip.txt", Data: []byte("not an image")},
		{Filename: "a.png", Data: encodePNG(t)},
		{Filename: "b.png", Data: encodePNG(t)},
	}

	req, err := NewBatchValidator(20).ValidateBatch(uploads)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, page := range req.Pages {
		if page.Index != i {
			t.Errorf("Page %d has index %d", i, page.Index)
		}
	}
}
