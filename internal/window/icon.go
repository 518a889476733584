package window

import (
	"image"
	"image/color"
)

const (
	iconSize = 16

	iconInk   uint16 = 0x0000
	iconPaper uint16 = 0xffff
)

// defaultIconRows is the built-in 16x16 window icon. 'O' is ink, '_' is paper.
var defaultIconRows = [iconSize]string{
	"________________",
	"______OOOOO_____",
	"_____O_____O____",
	"____O______O____",
	"____O_____O_O___",
	"__OO__O_____OO__",
	"___O____OO__O___",
	"___O____OO_OO___",
	"___O_______O____",
	"___O_______O____",
	"____O____OO_____",
	"_____OOOO__O____",
	"_____O_____OO___",
	"_____O__________",
	"____OO__________",
	"________________",
}

// DefaultIconPixels returns the icon as packed 16-bit ARGB4444 words, row major.
func DefaultIconPixels() []uint16 {
	pixels := make([]uint16, 0, iconSize*iconSize)
	for _, row := range defaultIconRows {
		for _, c := range row {
			if c == 'O' {
				pixels = append(pixels, iconInk)
			} else {
				pixels = append(pixels, iconPaper)
			}
		}
	}
	return pixels
}

// DefaultIcon decodes DefaultIconPixels with the masks A=0xf000 R=0x0f00 G=0x00f0 B=0x000f.
func DefaultIcon() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	for i, px := range DefaultIconPixels() {
		img.SetNRGBA(i%iconSize, i/iconSize, argb4444(px))
	}
	return img
}

func argb4444(px uint16) color.NRGBA {
	// Each nibble expands to a byte by repetition: 0xf -> 0xff.
	expand := func(v uint16) uint8 { return uint8(v&0xf) * 0x11 }
	return color.NRGBA{
		R: expand(px >> 8),
		G: expand(px >> 4),
		B: expand(px),
		A: expand(px >> 12),
	}
}
