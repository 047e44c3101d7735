package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/config/file"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

func TestStartPromptWatch_NilStore(t *testing.T) {
	original := promptStore
	promptStore = nil
	defer func() { promptStore = original }()

	// Must be a no-op, not a panic
	startPromptWatch(context.Background())
}

func TestStartPromptWatch_ReloadsOnEdit(t *testing.T) {
	dir := t.TempDir()
	store, err := file.NewPromptStore(dir)
	require.NoError(t, err)

	original := promptStore
	promptStore = store
	defer func() { promptStore = original }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startPromptWatch(ctx)

	// Give the watcher time to register, then change a file
	time.Sleep(100 * time.Millisecond)
	custom := "Edited system.\n---\nAnswer: {{question}}"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptRAGQuery+".txt"), []byte(custom), 0600))

	require.Eventually(t, func() bool {
		system, _, err := store.Render(driven.PromptRAGQuery, map[string]string{
			"question": "why", "context": "because",
		})
		return err == nil && strings.Contains(system, "Edited system.")
	}, 2*time.Second, 50*time.Millisecond)
}
