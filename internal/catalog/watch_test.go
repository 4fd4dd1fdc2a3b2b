package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCatalogFile(t *testing.T) {
	assert.True(t, isCatalogFile("catalog-index.json"))
	assert.True(t, isCatalogFile("tools/a.YAML"))
	assert.True(t, isCatalogFile("a.yml"))
	assert.False(t, isCatalogFile("README.md"))
	assert.False(t, isCatalogFile(".a.yaml.swp"))
}

func TestWatchCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tools"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- NewDirSource(dir).Watch(ctx, 20*time.Millisecond, func() { changes.Add(1) })
	}()

	// The watcher registers asynchronously, so keep touching the file
	// until a change is seen.
	target := filepath.Join(dir, "tools", "a.yaml")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("toolTemplate: {}\n"), 0o644)
		return changes.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := NewDirSource(filepath.Join(t.TempDir(), "missing")).Watch(context.Background(), time.Millisecond, func() {})
	assert.Error(t, err)
}
