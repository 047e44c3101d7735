package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

// Run drives theme discovery and book synthesis behind an interactive
// progress view and returns the synthesized chapters. The user can abort
// with q; the pipeline then stops at the next chapter boundary and the
// chapters written so far come back with the context error.
func Run(
	ctx context.Context,
	themes driving.ThemeService,
	synthesis driving.SynthesisService,
	themeCount int,
	opts driving.BookOptions,
) ([]domain.Chapter, error) {
	ports := &Ports{Themes: themes, Synthesis: synthesis}
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(cancel)
	program := tea.NewProgram(model)

	var (
		chapters []domain.Chapter
		runErr   error
	)
	done := make(chan struct{})

	go func() {
		defer close(done)

		discovered, err := ports.Themes.DiscoverThemes(ctx, themeCount)
		if err != nil {
			runErr = err
			program.Send(bookFailedMsg{err: err})
			return
		}
		program.Send(themesDiscoveredMsg{count: len(discovered)})

		userProgress := opts.Progress
		opts.Progress = func(current, total int, message string) {
			program.Send(progressMsg{current: current, total: total, message: message})
			if userProgress != nil {
				userProgress(current, total, message)
			}
		}

		chapters, runErr = ports.Synthesis.SynthesizeBook(ctx, discovered, opts)
		if runErr != nil {
			program.Send(bookFailedMsg{err: runErr})
			return
		}
		program.Send(bookDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return chapters, fmt.Errorf("tui: %w", err)
	}
	<-done

	return chapters, runErr
}
