// Package sdl2 drives the window through SDL2, the way the renderer API was first designed:
// a renderer owns the draw color and every primitive maps to one SDL_Render call.
package sdl2

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"window2d/internal/utils"
	"window2d/internal/window"

	"github.com/veandco/go-sdl2/sdl"
)

const Name = "sdl2"

// pixelFormat matches the byte order of image.RGBA / image.NRGBA on little-endian hosts.
const pixelFormat = uint32(sdl.PIXELFORMAT_ABGR8888)

func init() {
	window.Register(Name, Open)
}

type Driver struct {
	window      *sdl.Window
	renderer    *sdl.Renderer
	quitPending bool
}

type Texture struct {
	texture       *sdl.Texture
	width, height int
}

func (t *Texture) Size() (int, int) { return t.width, t.height }

func (t *Texture) Destroy() error {
	if t.texture == nil {
		return nil
	}
	err := t.texture.Destroy()
	t.texture = nil
	return err
}

func Open(cfg window.Config) (window.Driver, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("init SDL video: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_OPENGL)
	if cfg.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}

	win, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create window: %w", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(win, -1, rendererFlags)
	if err != nil {
		win.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	return &Driver{window: win, renderer: renderer}, nil
}

func toSDLRect(r *window.Rect) *sdl.Rect {
	if r == nil {
		return nil
	}
	return &sdl.Rect{X: int32(r.X), Y: int32(r.Y), W: int32(r.W), H: int32(r.H)}
}

func (d *Driver) Size() (int, int) {
	w, h := d.window.GetSize()
	return int(w), int(h)
}

func (d *Driver) SetSize(width, height int) {
	d.window.SetSize(int32(width), int32(height))
}

func (d *Driver) RefreshRate() (int, error) {
	displayIndex, err := d.window.GetDisplayIndex()
	if err != nil {
		return 0, err
	}
	mode, err := sdl.GetDisplayMode(displayIndex, 0)
	if err != nil {
		return 0, err
	}
	return int(mode.RefreshRate), nil
}

// newSurface copies img into a freshly allocated SDL surface. The caller frees it.
func newSurface(img image.Image) (*sdl.Surface, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty surface %v", b)
	}
	rgba := window.ToNRGBA(img)

	surface, err := sdl.CreateRGBSurfaceWithFormat(0, int32(b.Dx()), int32(b.Dy()), 32, pixelFormat)
	if err != nil {
		return nil, err
	}

	pixels := surface.Pixels()
	pitch := int(surface.Pitch)
	rowBytes := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		copy(pixels[y*pitch:y*pitch+rowBytes], rgba.Pix[y*rgba.Stride:y*rgba.Stride+rowBytes])
	}
	return surface, nil
}

func (d *Driver) SetIcon(icon image.Image) error {
	surface, err := newSurface(icon)
	if err != nil {
		return err
	}
	defer surface.Free()

	d.window.SetIcon(surface)
	return nil
}

func (d *Driver) Copy(tex window.Texture, src, dst *window.Rect) error {
	texture, ok := tex.(*Texture)
	if !ok {
		return window.ErrForeignTexture
	}
	if texture.texture == nil {
		return fmt.Errorf("texture already destroyed")
	}
	return d.renderer.Copy(texture.texture, toSDLRect(src), toSDLRect(dst))
}

func (d *Driver) DrawPoints(points []window.Point) error {
	sdlPoints := make([]sdl.Point, len(points))
	for i, p := range points {
		sdlPoints[i] = sdl.Point{X: int32(p.X), Y: int32(p.Y)}
	}
	return d.renderer.DrawPoints(sdlPoints)
}

func (d *Driver) DrawRect(rect window.Rect) error {
	return d.renderer.DrawRect(toSDLRect(&rect))
}

func (d *Driver) FillRect(rect window.Rect) error {
	return d.renderer.FillRect(toSDLRect(&rect))
}

func (d *Driver) Clear() error {
	return d.renderer.Clear()
}

func (d *Driver) Present() error {
	d.renderer.Present()
	return nil
}

func (d *Driver) SetDrawColor(c color.RGBA) error {
	return d.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
}

func (d *Driver) DrawColor() (color.RGBA, error) {
	r, g, b, a, err := d.renderer.GetDrawColor()
	return color.RGBA{R: r, G: g, B: b, A: a}, err
}

func (d *Driver) TextureFromImage(img image.Image) (window.Texture, error) {
	surface, err := newSurface(img)
	if err != nil {
		return nil, err
	}
	defer surface.Free()

	texture, err := d.renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, err
	}
	return &Texture{texture: texture, width: int(surface.W), height: int(surface.H)}, nil
}

// Snapshot reads the renderer output back; the window surface is not used because
// SDL forbids mixing it with a renderer.
func (d *Driver) Snapshot() (image.Image, error) {
	w, h, err := d.renderer.GetOutputSize()
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("renderer output is %dx%d", w, h)
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	if err := d.renderer.ReadPixels(nil, pixelFormat, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
		return nil, err
	}
	return img, nil
}

// ShouldClose drains pending events and reports whether a quit was requested.
func (d *Driver) ShouldClose() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			d.quitPending = true
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_CLOSE {
				d.quitPending = true
			}
		}
	}
	return d.quitPending
}

func (d *Driver) Close() error {
	var firstErr error
	if err := d.renderer.Destroy(); err != nil {
		utils.Error("SDL2 Error: %v", err)
		firstErr = err
	}
	if err := d.window.Destroy(); err != nil {
		utils.Error("SDL2 Error: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return firstErr
}
