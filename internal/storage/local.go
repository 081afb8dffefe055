package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/logger"
	"go-book-study/pkg/validation"
)

// imageExtensions are the filename extensions worth reading from a
// directory. Content sniffing still happens during batch validation.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// LocalSource reads page images from a directory on disk.
type LocalSource struct {
	dir string
}

// NewLocalSource creates a source over the given directory.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Load reads every image file in the directory, sorted by filename so
// page order follows the naming convention of the scans.
func (s *LocalSource) Load(_ context.Context) ([]validation.RawUpload, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.NewRejectionError(fmt.Sprintf("cannot read directory %s", s.dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExtensions[ext] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	uploads := make([]validation.RawUpload, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			logger.WithError(err).WithField("file", name).Warn("Skipping unreadable file")
			continue
		}
		uploads = append(uploads, validation.RawUpload{
			Filename: name,
			Data:     data,
		})
	}

	return uploads, nil
}
