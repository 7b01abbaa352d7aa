package normalisers

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/drafter/internal/core/ports/driven"
	"github.com/custodia-labs/drafter/internal/normalisers/html"
	"github.com/custodia-labs/drafter/internal/normalisers/markdown"
	"github.com/custodia-labs/drafter/internal/normalisers/plaintext"
)

// Registry maps file extensions to normalisers.
type Registry struct {
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates a registry that uses fallback for unknown extensions.
func NewRegistry(fallback driven.Normaliser) *Registry {
	return &Registry{
		byExt:    make(map[string]driven.Normaliser),
		fallback: fallback,
	}
}

// Defaults returns a registry with the built-in normalisers.
func Defaults() *Registry {
	text := plaintext.New()
	r := NewRegistry(text)
	r.Register(text)
	r.Register(markdown.New())
	r.Register(html.New())
	return r
}

// Register adds a normaliser for each of its extensions.
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.Extensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// Handles returns true if a normaliser is registered for the path's extension.
func (r *Registry) Handles(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// For returns the normaliser for path, or the fallback.
// It returns nil when the extension is unknown and there is no fallback.
func (r *Registry) For(path string) driven.Normaliser {
	if n, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return n
	}
	return r.fallback
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
