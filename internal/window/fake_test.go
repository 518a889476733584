package window

import (
	"errors"
	"image"
	"image/color"
)

// fakeDriver records every call so tests can inspect what Window asked the platform to do.
type fakeDriver struct {
	width, height int
	refreshRate   int
	drawColor     color.RGBA
	icon          image.Image

	batches  [][]Point
	rects    []Rect
	fills    []Rect
	copies   []fakeCopy
	clears   int
	presents int
	closed   bool

	copyErr  error
	iconErr  error
	snapshot image.Image
}

type fakeCopy struct {
	tex      Texture
	src, dst *Rect
}

type fakeTexture struct {
	width, height int
	destroyed     bool
}

func (t *fakeTexture) Size() (int, int) { return t.width, t.height }
func (t *fakeTexture) Destroy() error   { t.destroyed = true; return nil }

func newFakeDriver(width, height int) *fakeDriver {
	return &fakeDriver{width: width, height: height, refreshRate: 60}
}

func (d *fakeDriver) Size() (int, int) { return d.width, d.height }

func (d *fakeDriver) SetSize(width, height int) {
	d.width, d.height = width, height
}

func (d *fakeDriver) RefreshRate() (int, error) {
	if d.refreshRate == 0 {
		return 0, errors.New("no display")
	}
	return d.refreshRate, nil
}

func (d *fakeDriver) SetIcon(icon image.Image) error {
	if d.iconErr != nil {
		return d.iconErr
	}
	d.icon = icon
	return nil
}

func (d *fakeDriver) Copy(tex Texture, src, dst *Rect) error {
	if d.copyErr != nil {
		return d.copyErr
	}
	var srcCopy, dstCopy *Rect
	if src != nil {
		r := *src
		srcCopy = &r
	}
	if dst != nil {
		r := *dst
		dstCopy = &r
	}
	d.copies = append(d.copies, fakeCopy{tex: tex, src: srcCopy, dst: dstCopy})
	return nil
}

func (d *fakeDriver) DrawPoints(points []Point) error {
	d.batches = append(d.batches, append([]Point(nil), points...))
	return nil
}

func (d *fakeDriver) DrawRect(rect Rect) error {
	d.rects = append(d.rects, rect)
	return nil
}

func (d *fakeDriver) FillRect(rect Rect) error {
	d.fills = append(d.fills, rect)
	return nil
}

func (d *fakeDriver) Clear() error {
	d.clears++
	return nil
}

func (d *fakeDriver) Present() error {
	d.presents++
	return nil
}

func (d *fakeDriver) SetDrawColor(c color.RGBA) error {
	d.drawColor = c
	return nil
}

func (d *fakeDriver) DrawColor() (color.RGBA, error) { return d.drawColor, nil }

func (d *fakeDriver) TextureFromImage(img image.Image) (Texture, error) {
	b := img.Bounds()
	return &fakeTexture{width: b.Dx(), height: b.Dy()}, nil
}

func (d *fakeDriver) Snapshot() (image.Image, error) {
	if d.snapshot != nil {
		return d.snapshot, nil
	}
	return image.NewRGBA(image.Rect(0, 0, d.width, d.height)), nil
}

func (d *fakeDriver) ShouldClose() bool { return d.closed }

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}
