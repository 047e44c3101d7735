package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

func TestThemesCmd_ListsThemes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"themes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Tides")
	assert.Contains(t, buf.String(), "Tidal mechanics")
	assert.Contains(t, buf.String(), "1 chunks")
}

func TestThemesCmd_EmptyCollection(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	themeService = &stubThemeService{err: domain.ErrNoThemes}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"themes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "no themes to discover")
}

func TestThemesCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"themes", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		themesJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"theme-1"`)
}
