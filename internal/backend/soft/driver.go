// Package soft is a headless window driver that rasterizes into an in-memory gg context.
// It backs screenshots, CI runs and tests where no display is available.
package soft

import (
	"fmt"
	"image"
	"image/color"

	"window2d/internal/utils"
	"window2d/internal/window"

	"github.com/gogpu/gg"
)

const Name = "soft"

// RefreshRate is what the headless display reports.
var RefreshRate = window.DefaultUpdatesPerSecond

func init() {
	window.Register(Name, Open)
}

type Driver struct {
	title     string
	context   *gg.Context
	drawColor color.RGBA
	frames    int
	closed    bool
}

type Texture struct {
	image  *gg.ImageBuf
	width  int
	height int
}

func (t *Texture) Size() (int, int) { return t.width, t.height }

func (t *Texture) Destroy() error {
	t.image = nil
	return nil
}

func Open(cfg window.Config) (window.Driver, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}

	utils.Debug("soft: creating %dx%d context for %q", cfg.Width, cfg.Height, cfg.Title)
	return &Driver{
		title:     cfg.Title,
		context:   gg.NewContext(cfg.Width, cfg.Height),
		drawColor: color.RGBA{0, 0, 0, 255},
	}, nil
}

func (d *Driver) Size() (int, int) {
	return d.context.Width(), d.context.Height()
}

func (d *Driver) SetSize(width, height int) {
	if err := d.context.Resize(width, height); err != nil {
		utils.Warn("soft: %v", err)
	}
}

func (d *Driver) RefreshRate() (int, error) {
	return RefreshRate, nil
}

// SetIcon accepts any icon; a headless window has nowhere to show it.
func (d *Driver) SetIcon(icon image.Image) error {
	utils.Debug("soft: icon %v ignored", icon.Bounds())
	return nil
}

func (d *Driver) Copy(tex window.Texture, src, dst *window.Rect) error {
	texture, ok := tex.(*Texture)
	if !ok {
		return window.ErrForeignTexture
	}
	if texture.image == nil {
		return fmt.Errorf("texture already destroyed")
	}

	target := window.NewRect(0, 0, d.context.Width(), d.context.Height())
	if dst != nil {
		target = *dst
	}

	opts := gg.DrawImageOptions{
		X:         float64(target.X),
		Y:         float64(target.Y),
		DstWidth:  float64(target.W),
		DstHeight: float64(target.H),
		Opacity:   1,
		BlendMode: gg.BlendNormal,
	}
	if src != nil {
		region := src.Image()
		opts.SrcRect = &region
	}

	d.context.DrawImageEx(texture.image, opts)
	return nil
}

func (d *Driver) DrawPoints(points []window.Point) error {
	c := gg.FromColor(d.drawColor)
	for _, p := range points {
		d.context.SetPixel(p.X, p.Y, c)
	}
	return nil
}

// DrawRect sets the one pixel wide border of rect, matching a native renderer's outline.
func (d *Driver) DrawRect(rect window.Rect) error {
	if rect.W <= 0 || rect.H <= 0 {
		return nil
	}

	c := gg.FromColor(d.drawColor)
	right := rect.X + rect.W - 1
	bottom := rect.Y + rect.H - 1
	for x := rect.X; x <= right; x++ {
		d.context.SetPixel(x, rect.Y, c)
		d.context.SetPixel(x, bottom, c)
	}
	for y := rect.Y; y <= bottom; y++ {
		d.context.SetPixel(rect.X, y, c)
		d.context.SetPixel(right, y, c)
	}
	return nil
}

func (d *Driver) FillRect(rect window.Rect) error {
	if rect.W <= 0 || rect.H <= 0 {
		return nil
	}

	d.context.SetColor(d.drawColor)
	d.context.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
	return d.context.Fill()
}

func (d *Driver) Clear() error {
	d.context.ClearWithColor(gg.FromColor(d.drawColor))
	return nil
}

func (d *Driver) Present() error {
	d.frames++
	return d.context.FlushGPU()
}

// Frames reports how many times Present has been called.
func (d *Driver) Frames() int {
	return d.frames
}

func (d *Driver) SetDrawColor(c color.RGBA) error {
	d.drawColor = c
	return nil
}

func (d *Driver) DrawColor() (color.RGBA, error) {
	return d.drawColor, nil
}

func (d *Driver) TextureFromImage(img image.Image) (window.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty surface %v", b)
	}
	return &Texture{
		image:  gg.ImageBufFromImage(img),
		width:  b.Dx(),
		height: b.Dy(),
	}, nil
}

func (d *Driver) Snapshot() (image.Image, error) {
	if err := d.context.FlushGPU(); err != nil {
		return nil, err
	}
	return d.context.Image(), nil
}

// ShouldClose is always false; headless callers decide when to stop.
func (d *Driver) ShouldClose() bool {
	return d.closed
}

func (d *Driver) Close() error {
	d.closed = true
	utils.Debug("soft: closing %q after %d frames", d.title, d.frames)
	return d.context.Close()
}
