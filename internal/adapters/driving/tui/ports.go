// Package tui provides an interactive terminal progress view for book
// synthesis. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Themes provides theme discovery.
	Themes driving.ThemeService

	// Synthesis plans and writes chapters.
	Synthesis driving.SynthesisService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Themes == nil {
		return ErrMissingThemeService
	}
	if p.Synthesis == nil {
		return ErrMissingSynthesisService
	}
	return nil
}
