package utils

import (
	"os"
	"path/filepath"
)

// AssetsDir is an extra search root for icons and textures, set from config.
var AssetsDir string

func ResolveAssetPath(relPath string) string {
	if relPath == "" {
		return ""
	}

	if filepath.IsAbs(relPath) {
		return relPath
	}

	if _, err := os.Stat(relPath); err == nil {
		return relPath
	}

	if AssetsDir != "" {
		customPath := filepath.Join(AssetsDir, relPath)
		if _, err := os.Stat(customPath); err == nil {
			return customPath
		}
	}

	localPath := filepath.Join("assets", relPath)
	if _, err := os.Stat(localPath); err == nil {
		return localPath
	}

	Debug("Asset %s not found in any search root", relPath)
	return relPath
}
