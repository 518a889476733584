package window

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"
)

var (
	ErrClosed         = errors.New("window is closed")
	ErrUnknownDriver  = errors.New("unknown window driver")
	ErrForeignTexture = errors.New("texture was created by a different driver")
)

// Texture is a renderer-native image. Textures handed out by a Window belong to the caller.
type Texture interface {
	Size() (width, height int)
	Destroy() error
}

// Driver wraps one native window together with its renderer.
type Driver interface {
	Size() (width, height int)
	SetSize(width, height int)
	RefreshRate() (int, error)
	SetIcon(icon image.Image) error

	// Copy blits src of tex into dst of the back buffer. A nil rect means the whole texture or target.
	Copy(tex Texture, src, dst *Rect) error
	DrawPoints(points []Point) error
	DrawRect(rect Rect) error
	FillRect(rect Rect) error
	Clear() error
	Present() error

	SetDrawColor(c color.RGBA) error
	DrawColor() (color.RGBA, error)

	TextureFromImage(img image.Image) (Texture, error)
	// Snapshot reads back the current window contents. Any native surface used is released before returning.
	Snapshot() (image.Image, error)

	ShouldClose() bool
	// Close destroys the renderer, then the window.
	Close() error
}

// Opener creates the native window and renderer for cfg.
type Opener func(cfg Config) (Driver, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Opener)
)

// Register makes a driver available by name. It panics if open is nil or the name is taken.
func Register(name string, open Opener) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if open == nil {
		panic("window: Register opener is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("window: Register called twice for driver " + name)
	}
	drivers[name] = open
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	return sortedKeys(drivers)
}

func lookupDriver(name string) (Opener, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	open, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownDriver, name, sortedKeys(drivers))
	}
	return open, nil
}

func sortedKeys(m map[string]Opener) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// closedDriver stands in for the native driver after Close.
type closedDriver struct{}

func (closedDriver) Size() (int, int)                              { return 0, 0 }
func (closedDriver) SetSize(int, int)                              {}
func (closedDriver) RefreshRate() (int, error)                     { return 0, ErrClosed }
func (closedDriver) SetIcon(image.Image) error                     { return ErrClosed }
func (closedDriver) Copy(Texture, *Rect, *Rect) error              { return ErrClosed }
func (closedDriver) DrawPoints([]Point) error                      { return ErrClosed }
func (closedDriver) DrawRect(Rect) error                           { return ErrClosed }
func (closedDriver) FillRect(Rect) error                           { return ErrClosed }
func (closedDriver) Clear() error                                  { return ErrClosed }
func (closedDriver) Present() error                                { return ErrClosed }
func (closedDriver) SetDrawColor(color.RGBA) error                 { return ErrClosed }
func (closedDriver) DrawColor() (color.RGBA, error)                { return color.RGBA{}, ErrClosed }
func (closedDriver) TextureFromImage(image.Image) (Texture, error) { return nil, ErrClosed }
func (closedDriver) Snapshot() (image.Image, error)                { return nil, ErrClosed }
func (closedDriver) ShouldClose() bool                             { return true }
func (closedDriver) Close() error                                  { return nil }
