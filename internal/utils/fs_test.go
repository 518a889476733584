package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAssetPath(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.MkdirAll(filepath.Join("assets", "icons"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join("assets", "icons", "app.png"), nil, 0644))
	require.NoError(t, os.WriteFile("local.png", nil, 0644))

	custom := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(custom, "custom.png"), nil, 0644))
	t.Cleanup(func() { AssetsDir = "" })
	AssetsDir = custom

	assert.Equal(t, "", ResolveAssetPath(""))
	assert.Equal(t, "/abs/missing.png", ResolveAssetPath("/abs/missing.png"))
	assert.Equal(t, "local.png", ResolveAssetPath("local.png"))
	assert.Equal(t, filepath.Join(custom, "custom.png"), ResolveAssetPath("custom.png"))
	assert.Equal(t, filepath.Join("assets", "icons", "app.png"), ResolveAssetPath(filepath.Join("icons", "app.png")))
	assert.Equal(t, "nowhere.png", ResolveAssetPath("nowhere.png"), "unresolved paths are returned unchanged")
}
