// Package raylib drives the window through raylib. Raylib keeps no renderer draw color,
// so the driver tracks it and passes it to every draw call.
package raylib

import (
	"fmt"
	"image"
	"image/color"

	"window2d/internal/utils"
	"window2d/internal/window"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const Name = "raylib"

func init() {
	window.Register(Name, Open)
}

type Driver struct {
	drawColor color.RGBA
	inFrame   bool
}

type Texture struct {
	texture rl.Texture2D
}

func (t *Texture) Size() (int, int) {
	return int(t.texture.Width), int(t.texture.Height)
}

func (t *Texture) Destroy() error {
	if t.texture.ID != 0 {
		rl.UnloadTexture(t.texture)
		t.texture = rl.Texture2D{}
	}
	return nil
}

func Open(cfg window.Config) (window.Driver, error) {
	rl.SetTraceLogCallback(utils.BackendLogCallback)

	var flags uint32
	if cfg.Resizable {
		flags |= rl.FlagWindowResizable
	}
	if cfg.VSync {
		flags |= rl.FlagVsyncHint
	}
	rl.SetConfigFlags(flags)

	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), cfg.Title)
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("raylib could not create a %dx%d window", cfg.Width, cfg.Height)
	}

	return &Driver{drawColor: rl.Black}, nil
}

func (d *Driver) beginFrame() {
	if !d.inFrame {
		rl.BeginDrawing()
		d.inFrame = true
	}
}

func (d *Driver) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

func (d *Driver) SetSize(width, height int) {
	rl.SetWindowSize(width, height)
}

func (d *Driver) RefreshRate() (int, error) {
	rate := rl.GetMonitorRefreshRate(rl.GetCurrentMonitor())
	if rate > 0 {
		return rate, nil
	}

	// Some X11 setups report 0 through GLFW; ask RandR directly.
	utils.Debug("raylib: monitor reports %d Hz, falling back to X11", rate)
	position := rl.GetWindowPosition()
	width, height := d.Size()
	return utils.X11RefreshRate(int(position.X)+width/2, int(position.Y)+height/2)
}

// newImage uploads img as straight-alpha R8G8B8A8. rl.NewImageFromImage is not used
// because it reads from (0, 0) and keeps premultiplied colors.
func newImage(img image.Image) (*rl.Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty surface %v", b)
	}
	nrgba := window.ToNRGBA(img)
	return rl.NewImage(nrgba.Pix, int32(b.Dx()), int32(b.Dy()), 1, rl.UncompressedR8g8b8a8), nil
}

// SetIcon needs no unload: the image borrows the Go pixel slice.
func (d *Driver) SetIcon(icon image.Image) error {
	img, err := newImage(icon)
	if err != nil {
		return err
	}
	rl.SetWindowIcon(*img)
	return nil
}

func toRectangle(r window.Rect) rl.Rectangle {
	return rl.NewRectangle(float32(r.X), float32(r.Y), float32(r.W), float32(r.H))
}

func (d *Driver) Copy(tex window.Texture, src, dst *window.Rect) error {
	texture, ok := tex.(*Texture)
	if !ok {
		return window.ErrForeignTexture
	}
	if texture.texture.ID == 0 {
		return fmt.Errorf("texture already destroyed")
	}

	sourceRec := rl.NewRectangle(0, 0, float32(texture.texture.Width), float32(texture.texture.Height))
	if src != nil {
		sourceRec = toRectangle(*src)
	}
	destRec := rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	if dst != nil {
		destRec = toRectangle(*dst)
	}

	d.beginFrame()
	rl.DrawTexturePro(texture.texture, sourceRec, destRec, rl.NewVector2(0, 0), 0, rl.White)
	return nil
}

func (d *Driver) DrawPoints(points []window.Point) error {
	d.beginFrame()
	for _, p := range points {
		rl.DrawPixel(int32(p.X), int32(p.Y), d.drawColor)
	}
	return nil
}

func (d *Driver) DrawRect(rect window.Rect) error {
	d.beginFrame()
	rl.DrawRectangleLines(int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H), d.drawColor)
	return nil
}

func (d *Driver) FillRect(rect window.Rect) error {
	d.beginFrame()
	rl.DrawRectangle(int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H), d.drawColor)
	return nil
}

func (d *Driver) Clear() error {
	d.beginFrame()
	rl.ClearBackground(d.drawColor)
	return nil
}

// Present ends the frame, which swaps buffers and polls window events.
func (d *Driver) Present() error {
	d.beginFrame()
	rl.EndDrawing()
	d.inFrame = false
	return nil
}

func (d *Driver) SetDrawColor(c color.RGBA) error {
	d.drawColor = c
	return nil
}

func (d *Driver) DrawColor() (color.RGBA, error) {
	return d.drawColor, nil
}

func (d *Driver) TextureFromImage(img image.Image) (window.Texture, error) {
	surface, err := newImage(img)
	if err != nil {
		return nil, err
	}

	texture := rl.LoadTextureFromImage(surface)
	if texture.ID == 0 {
		return nil, fmt.Errorf("raylib failed to upload %dx%d texture", surface.Width, surface.Height)
	}
	return &Texture{texture: texture}, nil
}

func (d *Driver) Snapshot() (image.Image, error) {
	screen := rl.LoadImageFromScreen()
	if screen == nil || screen.Width == 0 {
		return nil, fmt.Errorf("raylib returned an empty screen image")
	}
	defer rl.UnloadImage(screen)

	return screen.ToImage(), nil
}

func (d *Driver) ShouldClose() bool {
	return rl.WindowShouldClose()
}

func (d *Driver) Close() error {
	if d.inFrame {
		rl.EndDrawing()
		d.inFrame = false
	}
	// CloseWindow unloads the render batch before destroying the GLFW window.
	rl.CloseWindow()
	utils.CloseX11()
	return nil
}
