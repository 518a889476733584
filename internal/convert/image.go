// Package convert turns files on disk into images a window can upload as textures.
package convert

import (
	"bufio"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"window2d/internal/utils"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// IconSize is the edge length window icons are scaled to.
const IconSize = 16

// LoadImage decodes a png, jpeg, bmp or .tex file.
func LoadImage(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".tex") {
		return LoadTex(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	utils.Debug("Loaded %s image %s (%v)", format, path, img.Bounds())
	return img, nil
}

// ScaleIcon resamples img to an IconSize square.
func ScaleIcon(img image.Image) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, IconSize, IconSize))
	if img.Bounds().Dx() == IconSize && img.Bounds().Dy() == IconSize {
		draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}
