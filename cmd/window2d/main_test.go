package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"window2d/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	level := utils.CurrentLevel
	t.Cleanup(func() {
		utils.CurrentLevel = level
		utils.AssetsDir = ""
		utils.ShowBackendInfo = false
		utils.SetOutput(os.Stderr)
	})
}

func writeBundle(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	putString := func(s string) {
		binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}
	putString("PKGV0019")
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	putString("scene.json")
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	buf.WriteString("{}")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestRunRemovesAssetsDirOnFailure(t *testing.T) {
	resetGlobals(t)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	pkg := filepath.Join(t.TempDir(), "scene.pkg")
	writeBundle(t, pkg)

	err := run([]string{"-pkg", pkg, "-driver", "no-such-driver", "-log", "error"})
	require.Error(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "extracted assets are cleaned up when the window cannot open")
}

func TestRunHeadlessScreenshot(t *testing.T) {
	resetGlobals(t)
	var logs bytes.Buffer
	utils.SetOutput(&logs)

	shot := filepath.Join(t.TempDir(), "shot.png")
	err := run([]string{"-driver", "soft", "-width", "64", "-height", "36", "-frames", "2", "-screenshot", shot, "-log", "info"})
	require.NoError(t, err)
	assert.FileExists(t, shot)
	assert.Equal(t, 1, strings.Count(logs.String(), "Saved screenshot"), "one log line per screenshot")
}

func TestRunRejectsBadFlags(t *testing.T) {
	resetGlobals(t)
	assert.Error(t, run([]string{"-width", "wide"}))
	assert.Error(t, run([]string{"-width", "0"}))
}
