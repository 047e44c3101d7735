package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// mimeByExtension maps known file extensions to MIME types.
// mime.TypeByExtension is platform-dependent, so ingestible formats are
// pinned here.
var mimeByExtension = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".json":     "application/json",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Fetcher reads documents from the local filesystem.
type Fetcher struct{}

// New creates a new filesystem fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

// Supports reports whether this fetcher handles the given URI.
// Bare paths and file:// URIs are filesystem URIs.
func (f *Fetcher) Supports(uri string) bool {
	if strings.HasPrefix(uri, "file://") {
		return true
	}
	return !strings.Contains(uri, "://")
}

// Fetch reads a single file and detects its MIME type by extension.
// Directories are rejected; use ListFiles to expand them first.
func (f *Fetcher) Fetch(_ context.Context, uri string) (*domain.RawDocument, error) {
	path := ResolvePath(uri)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}

	mimeType, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrUnsupportedType)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &domain.RawDocument{
		URI:      abs,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"modified_at": info.ModTime(),
		},
	}, nil
}

// ListFiles walks a directory and returns paths of all ingestible files.
// A non-directory path is returned as-is when its type is supported.
func ListFiles(root string) ([]string, error) {
	root = ResolvePath(root)

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", root, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		if _, ok := mimeByExtension[strings.ToLower(filepath.Ext(root))]; !ok {
			return nil, fmt.Errorf("%s: %w", root, domain.ErrUnsupportedType)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return paths, nil
}

// ResolvePath converts a filesystem URI to a local path for opening.
// Handles file:// URIs and bare paths.
func ResolvePath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}
