package tui

import "errors"

// ErrMissingThemeService is returned when the theme service is not provided.
var ErrMissingThemeService = errors.New("tui: theme service is required")

// ErrMissingSynthesisService is returned when the synthesis service is not provided.
var ErrMissingSynthesisService = errors.New("tui: synthesis service is required")
