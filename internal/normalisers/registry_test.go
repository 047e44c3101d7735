package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

type fakeNormaliser struct {
	mimes    []string
	priority int
	name     string
}

func (f *fakeNormaliser) SupportedMIMETypes() []string { return f.mimes }
func (f *fakeNormaliser) Priority() int                { return f.priority }

func (f *fakeNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{
		Document: domain.Document{Title: f.name, Content: string(raw.Content)},
	}, nil
}

func TestRegistry_SelectsByMIMEType(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{mimes: []string{"text/plain"}, priority: 5, name: "plain"})
	r.Register(&fakeNormaliser{mimes: []string{"text/html"}, priority: 50, name: "html"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/html",
		Content:  []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "html", result.Document.Title)
}

func TestRegistry_HigherPriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{mimes: []string{"text/plain"}, priority: 5, name: "fallback"})
	r.Register(&fakeNormaliser{mimes: []string{"text/plain"}, priority: 50, name: "specific"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/plain",
		Content:  []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "specific", result.Document.Title)
}

func TestRegistry_UnsupportedMIMEType(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{mimes: []string{"text/plain"}, priority: 5, name: "plain"})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "application/octet-stream",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NilDocument(t *testing.T) {
	r := NewRegistry()
	_, err := r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{mimes: []string{"text/plain", "text/csv"}, priority: 5})
	r.Register(&fakeNormaliser{mimes: []string{"text/html"}, priority: 50})

	types := r.SupportedMIMETypes()
	assert.Equal(t, []string{"text/csv", "text/html", "text/plain"}, types)
}
