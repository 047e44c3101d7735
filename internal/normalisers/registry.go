package normalisers

import (
	"context"
	"fmt"
	"sort"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest-priority normaliser
// registered for their MIME type.
type Registry struct {
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser for each of its supported MIME types.
func (r *Registry) Register(normaliser driven.Normaliser) {
	for _, mime := range normaliser.SupportedMIMETypes() {
		candidates := append(r.byMIME[mime], normaliser)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Priority() > candidates[j].Priority()
		})
		r.byMIME[mime] = candidates
	}
}

// Normalise transforms a raw document using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	candidates := r.byMIME[raw.MIMEType]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no normaliser for %q: %w", raw.MIMEType, domain.ErrUnsupportedType)
	}

	return candidates[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}
