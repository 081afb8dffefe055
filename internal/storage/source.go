// Package storage loads page image batches from the places the CLI
// can point at: a local directory or an Azure blob container.
package storage

import (
	"context"

	"go-book-study/pkg/validation"
)

// PageSource yields the raw uploads of one batch. Ordering is the
// source's natural name order so page numbering in the report matches
// the file listing.
type PageSource interface {
	Load(ctx context.Context) ([]validation.RawUpload, error)
}
