package window

import (
	"image"
	"image/draw"
)

// Rect is an axis-aligned integer box.
type Rect struct {
	X, Y int
	W, H int
}

func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// IsZero reports whether every field is 0. Render treats such a source rect as "whole texture".
func (r Rect) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.W == 0 && r.H == 0
}

// Image converts r to the min/max form used by the image packages.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

type Point struct {
	X, Y int
}

// ToNRGBA returns img as tightly packed, straight-alpha pixels starting at (0, 0).
// img itself is returned when it already has that layout.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && nrgba.Stride == 4*b.Dx() {
		return nrgba
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Rect, img, b.Min, draw.Src)
	return nrgba
}
