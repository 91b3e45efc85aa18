package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/pagefix/internal/adapters/driven/source/images"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/source/pdf"
	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SourceOpener = (*Registry)(nil)

// OpenFunc opens a file as a source document.
type OpenFunc func(ctx context.Context, path string) (driven.SourceDocument, error)

// Registry opens sources by file extension. Directories are opened with
// the directory opener.
type Registry struct {
	mu        sync.RWMutex
	byExt     map[string]OpenFunc
	directory OpenFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]OpenFunc)}
}

// NewDefaultRegistry registers PDF files, image files and image directories.
func NewDefaultRegistry(runner pdf.CommandRunner) *Registry {
	r := NewRegistry()
	r.Register(".pdf", func(_ context.Context, path string) (driven.SourceDocument, error) {
		src, err := pdf.Open(path, runner)
		if err != nil {
			return nil, err
		}
		return src, nil
	})
	openImages := func(_ context.Context, path string) (driven.SourceDocument, error) {
		src, err := images.Open(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	for _, ext := range images.Extensions() {
		r.Register(ext, openImages)
	}
	r.RegisterDirectory(openImages)
	return r
}

// Register sets the opener for an extension such as ".pdf".
func (r *Registry) Register(ext string, open OpenFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[strings.ToLower(ext)] = open
}

// RegisterDirectory sets the opener for directories.
func (r *Registry) RegisterDirectory(open OpenFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directory = open
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether the path has a registered extension.
func (r *Registry) Supports(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byExt[strings.ToLower(filepath.Ext(uri))]
	return ok
}

// Open opens the path with the opener for its kind.
func (r *Registry) Open(ctx context.Context, uri string) (driven.SourceDocument, error) {
	info, err := os.Stat(uri)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	open := r.byExt[strings.ToLower(filepath.Ext(uri))]
	if info.IsDir() {
		open = r.directory
	}
	r.mu.RUnlock()

	if open == nil {
		return nil, fmt.Errorf("%s: %w", uri, domain.ErrUnsupportedType)
	}
	return open(ctx, uri)
}
