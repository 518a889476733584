package window

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"window2d/internal/utils"
)

// DefaultUpdatesPerSecond is the frame rate callers should drive the window at.
const DefaultUpdatesPerSecond = 60

type Config struct {
	Title     string
	Width     int
	Height    int
	Driver    string
	Resizable bool
	VSync     bool

	// Icon replaces DefaultIcon when set.
	Icon image.Image
}

// Window owns one native window and its renderer. It is not safe for concurrent use.
type Window struct {
	driver Driver
	config Config
	colors []color.RGBA
}

// New opens the configured driver and installs the window icon.
func New(cfg Config) (*Window, error) {
	open, err := lookupDriver(cfg.Driver)
	if err != nil {
		utils.Error("Window failed to init. Error: %v", err)
		return nil, err
	}

	driver, err := open(cfg)
	if err != nil {
		utils.Error("Window failed to init. Error: %v", err)
		return nil, fmt.Errorf("open %s window %q: %w", cfg.Driver, cfg.Title, err)
	}

	return newWindow(driver, cfg), nil
}

func newWindow(driver Driver, cfg Config) *Window {
	icon := cfg.Icon
	if icon == nil {
		icon = DefaultIcon()
	}
	if err := driver.SetIcon(icon); err != nil {
		utils.Warn("Failed to set window icon: %v", err)
	}

	utils.Info("Opened %dx%d window %q with driver %s", cfg.Width, cfg.Height, cfg.Title, cfg.Driver)
	return &Window{
		driver: driver,
		config: cfg,
	}
}

// Close destroys the renderer and then the window. Calling Close again is a no-op.
func (window *Window) Close() error {
	if _, closed := window.driver.(closedDriver); closed {
		return nil
	}

	if n := len(window.colors); n > 0 {
		utils.Warn("Closing window with %d unpopped draw colors", n)
	}

	driver := window.driver
	window.driver = closedDriver{}
	window.colors = nil

	if err := driver.Close(); err != nil {
		return fmt.Errorf("close window %q: %w", window.config.Title, err)
	}
	return nil
}

func (window *Window) ShouldClose() bool {
	return window.driver.ShouldClose()
}

// RefreshRate queries the display currently hosting the window. It returns 0 if the query fails.
func (window *Window) RefreshRate() int {
	rate, err := window.driver.RefreshRate()
	if err != nil {
		utils.Warn("Failed to query refresh rate: %v", err)
		return 0
	}
	return rate
}

func (window *Window) Size() (int, int) {
	return window.driver.Size()
}

// SetSize passes the size straight to the platform without validation.
func (window *Window) SetSize(width, height int) {
	window.driver.SetSize(width, height)
}

// Render copies src of tex into dst. A src of {0,0,0,0} selects the whole texture,
// so a literal zero-sized region at the origin cannot be requested.
func (window *Window) Render(src, dst Rect, tex Texture) bool {
	var srcRect *Rect
	if !src.IsZero() {
		srcRect = &src
	}

	if err := window.driver.Copy(tex, srcRect, &dst); err != nil {
		utils.Error("Render failed: %v", err)
		return false
	}
	return true
}

// RenderCopy is the raw copy: nil src is the whole texture, nil dst the whole target. Errors are dropped.
func (window *Window) RenderCopy(tex Texture, src, dst *Rect) {
	if err := window.driver.Copy(tex, src, dst); err != nil {
		utils.Debug("RenderCopy: %v", err)
	}
}

func (window *Window) Display() {
	if err := window.driver.Present(); err != nil {
		utils.Debug("Present: %v", err)
	}
}

func (window *Window) Clear() {
	if err := window.driver.Clear(); err != nil {
		utils.Debug("Clear: %v", err)
	}
}

// DrawCircle draws a circle outline of the given radius with the current draw color.
func (window *Window) DrawCircle(centerX, centerY, radius int) {
	midpointCircle(centerX, centerY, radius, func(points []Point) {
		if err := window.driver.DrawPoints(points); err != nil {
			utils.Debug("DrawPoints: %v", err)
		}
	})
}

func (window *Window) DrawRect(rect Rect) {
	if err := window.driver.DrawRect(rect); err != nil {
		utils.Debug("DrawRect: %v", err)
	}
}

func (window *Window) DrawRectFilled(rect Rect) {
	if err := window.driver.FillRect(rect); err != nil {
		utils.Debug("FillRect: %v", err)
	}
}

// CreateTextureFromSurface uploads img to the renderer. The caller owns the texture.
func (window *Window) CreateTextureFromSurface(img image.Image) (Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("create texture: nil surface")
	}
	tex, err := window.driver.TextureFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	return tex, nil
}

// CreateTextureFromWindow snapshots the current window contents into a new texture.
func (window *Window) CreateTextureFromWindow() (Texture, error) {
	surface, err := window.driver.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot window: %w", err)
	}
	return window.CreateTextureFromSurface(surface)
}

// SaveScreenshot writes the current window contents to path as PNG.
func (window *Window) SaveScreenshot(path string) error {
	surface, err := window.driver.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot window: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}

	utils.Info("Saved screenshot to %s", path)
	return nil
}

func (window *Window) SetDrawColor(c color.RGBA) {
	if err := window.driver.SetDrawColor(c); err != nil {
		utils.Debug("SetDrawColor: %v", err)
	}
}

func (window *Window) DrawColor() color.RGBA {
	c, err := window.driver.DrawColor()
	if err != nil {
		utils.Debug("DrawColor: %v", err)
	}
	return c
}

// PushColor saves the current draw color and makes c current.
func (window *Window) PushColor(c color.RGBA) {
	window.colors = append(window.colors, window.DrawColor())
	window.SetDrawColor(c)
}

// PopColor restores the color saved by the most recent PushColor.
// With nothing saved it logs a warning and leaves the color alone.
func (window *Window) PopColor() {
	n := len(window.colors)
	if n == 0 {
		utils.Warn("PopColor called with an empty color stack")
		return
	}

	c := window.colors[n-1]
	window.colors = window.colors[:n-1]
	window.SetDrawColor(c)
}

// WithColor pushes c and returns a func that restores the previous color:
//
//	defer window.WithColor(red)()
//
// The returned func unwinds any pushes left on top of this one and is safe to call twice.
func (window *Window) WithColor(c color.RGBA) (restore func()) {
	depth := len(window.colors)
	window.PushColor(c)

	return func() {
		if len(window.colors) <= depth {
			return
		}
		saved := window.colors[depth]
		window.colors = window.colors[:depth]
		window.SetDrawColor(saved)
	}
}

// InnerRect is the package InnerRect, kept on Window for callers that only hold a window.
func (window *Window) InnerRect(parent Rect, aspectRatio float32) Rect {
	return InnerRect(parent, aspectRatio)
}
