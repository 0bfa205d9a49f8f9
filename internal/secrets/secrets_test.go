// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDirectory(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadReadsAndTrims(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openrouter-api-key"), []byte("sk-or-123\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openalex-email"), []byte("  bench@example.com  "), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("   \n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("nope"), 0o600))

	got, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-or-123", got["openrouter-api-key"])
	assert.Equal(t, "bench@example.com", got["openalex-email"])
	assert.NotContains(t, got, "empty")
	assert.NotContains(t, got, ".hidden")
}

func TestLoadSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "anthropic-api-key"), []byte("sk-ant"), 0o600))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"anthropic-api-key": "sk-ant"}, got)
}
