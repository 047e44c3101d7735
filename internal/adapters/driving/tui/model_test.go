package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

func TestPorts_Validate(t *testing.T) {
	t.Run("missing theme service", func(t *testing.T) {
		ports := &Ports{Synthesis: &stubSynthesisService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingThemeService)
	})

	t.Run("missing synthesis service", func(t *testing.T) {
		ports := &Ports{Themes: &stubThemeService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSynthesisService)
	})

	t.Run("complete ports", func(t *testing.T) {
		ports := &Ports{Themes: &stubThemeService{}, Synthesis: &stubSynthesisService{}}
		assert.NoError(t, ports.Validate())
	})
}

func TestModel_PhaseTransitions(t *testing.T) {
	m := NewModel(nil)
	assert.Equal(t, phaseDiscovering, m.phase)

	updated, _ := m.Update(themesDiscoveredMsg{count: 3})
	m = updated.(*Model)
	assert.Equal(t, phaseWriting, m.phase)

	updated, _ = m.Update(progressMsg{current: 1, total: 3, message: "Chapter 1 done"})
	m = updated.(*Model)
	assert.Equal(t, 1, m.current)
	assert.Equal(t, 3, m.total)

	updated, cmd := m.Update(bookDoneMsg{})
	m = updated.(*Model)
	assert.Equal(t, phaseDone, m.phase)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_FailureShowsError(t *testing.T) {
	m := NewModel(nil)

	updated, cmd := m.Update(bookFailedMsg{err: errors.New("llm unreachable")})
	m = updated.(*Model)

	assert.Equal(t, phaseFailed, m.phase)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "llm unreachable")
}

func TestModel_QuitKeyCancels(t *testing.T) {
	cancelled := false
	m := NewModel(func() { cancelled = true })

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(*Model)

	assert.True(t, cancelled)
	assert.Equal(t, phaseCancelled, m.phase)

	// A late failure message must not hide that the user cancelled.
	updated, _ = m.Update(bookFailedMsg{err: context.Canceled})
	m = updated.(*Model)
	assert.Equal(t, phaseCancelled, m.phase)
}

func TestModel_LogIsBounded(t *testing.T) {
	m := NewModel(nil)

	for i := 0; i < maxLogLines+4; i++ {
		updated, _ := m.Update(progressMsg{current: i, total: 20, message: "line"})
		m = updated.(*Model)
	}

	assert.Len(t, m.log, maxLogLines)
}

func TestModel_ViewByPhase(t *testing.T) {
	m := NewModel(nil)
	assert.Contains(t, m.View(), "Discovering themes")

	updated, _ := m.Update(themesDiscoveredMsg{count: 2})
	m = updated.(*Model)
	updated, _ = m.Update(progressMsg{current: 1, total: 2, message: "Planned 2 chapters"})
	m = updated.(*Model)

	view := m.View()
	assert.Contains(t, view, "Writing chapters (1/2)")
	assert.Contains(t, view, "Planned 2 chapters")

	updated, _ = m.Update(bookDoneMsg{})
	m = updated.(*Model)
	assert.True(t, strings.Contains(m.View(), "Done"))
}

// stubThemeService satisfies driving.ThemeService for validation tests.
type stubThemeService struct{}

func (s *stubThemeService) DiscoverThemes(context.Context, int) ([]domain.Theme, error) {
	return nil, nil
}

// stubSynthesisService satisfies driving.SynthesisService for validation tests.
type stubSynthesisService struct{}

func (s *stubSynthesisService) PlanChapters(
	_ context.Context,
	themes []domain.Theme,
	_, _ string,
) ([]domain.Theme, error) {
	return themes, nil
}

func (s *stubSynthesisService) SynthesizeChapter(
	_ context.Context,
	_ domain.Theme,
	_, _ int,
	_ domain.DetailLevel,
	_ string,
) (*domain.Chapter, error) {
	return &domain.Chapter{}, nil
}

func (s *stubSynthesisService) SynthesizeBook(
	_ context.Context,
	_ []domain.Theme,
	_ driving.BookOptions,
) ([]domain.Chapter, error) {
	return nil, nil
}

var (
	_ driving.ThemeService     = (*stubThemeService)(nil)
	_ driving.SynthesisService = (*stubSynthesisService)(nil)
)
