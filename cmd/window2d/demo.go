package main

import (
	"image"
	"image/color"
	"math"
	"time"

	"window2d/internal/utils"
	"window2d/internal/window"
)

const sceneAspect = float32(16) / 9

var (
	backgroundColor = color.RGBA{16, 16, 24, 255}
	sceneColor      = color.RGBA{40, 44, 52, 255}
	frameColor      = color.RGBA{200, 200, 200, 255}
	circleColor     = color.RGBA{255, 196, 0, 255}
	markerColor     = color.RGBA{255, 64, 64, 255}
)

// Demo exercises every drawing call of a window once per frame.
type Demo struct {
	window   *window.Window
	textures []window.Texture

	// Screenshot is a PNG path the final frame is written to.
	Screenshot string

	startTime time.Time
	elapsed   float64
	frames    int
}

func NewDemo(win *window.Window, images []image.Image) *Demo {
	demo := &Demo{
		window:    win,
		startTime: time.Now(),
	}

	for i, img := range images {
		if img == nil {
			continue
		}
		tex, err := win.CreateTextureFromSurface(img)
		if err != nil {
			utils.Error("Failed to upload texture %d: %v", i, err)
			continue
		}
		demo.textures = append(demo.textures, tex)
	}
	utils.Debug("Demo: %d textures ready", len(demo.textures))
	return demo
}

// Run draws at updatesPerSecond until the window asks to close or maxFrames
// frames were shown. maxFrames <= 0 means no limit.
//
// With Screenshot set, the final frame is read back before it is presented;
// SDL only guarantees the renderer contents up to the present.
func (demo *Demo) Run(updatesPerSecond, maxFrames int) error {
	if updatesPerSecond <= 0 {
		updatesPerSecond = window.DefaultUpdatesPerSecond
	}
	ticker := time.NewTicker(time.Second / time.Duration(updatesPerSecond))
	defer ticker.Stop()

	utils.Info("Starting loop at %d updates per second (display %d Hz)", updatesPerSecond, demo.window.RefreshRate())
	for {
		if demo.window.ShouldClose() {
			utils.Info("Loop finished after %d frames", demo.frames)
			if demo.Screenshot == "" {
				return nil
			}
			// The last shown frame is gone after the present; draw it once more.
			demo.Update()
			demo.Draw()
			return demo.window.SaveScreenshot(demo.Screenshot)
		}

		demo.Update()
		demo.Draw()

		last := maxFrames > 0 && demo.frames+1 >= maxFrames
		if last && demo.Screenshot != "" {
			if err := demo.window.SaveScreenshot(demo.Screenshot); err != nil {
				return err
			}
		}
		demo.window.Display()
		demo.frames++

		if last {
			utils.Info("Loop finished after %d frames", demo.frames)
			return nil
		}
		<-ticker.C
	}
}

func (demo *Demo) Update() {
	demo.elapsed = time.Since(demo.startTime).Seconds()
}

func (demo *Demo) Draw() {
	win := demo.window
	width, height := win.Size()

	win.SetDrawColor(backgroundColor)
	win.Clear()

	scene := win.InnerRect(window.NewRect(0, 0, width, height), sceneAspect)
	restore := win.WithColor(sceneColor)
	win.DrawRectFilled(scene)
	win.SetDrawColor(frameColor)
	win.DrawRect(scene)
	restore()

	demo.drawTextures(scene)
	demo.drawCircles(scene)

	// A marker in the top left corner of the scene, drawn with a pushed color.
	win.PushColor(markerColor)
	win.DrawRectFilled(window.NewRect(scene.X+4, scene.Y+4, 8, 8))
	win.PopColor()
}

// drawTextures lays the textures out in a row along the bottom third of the scene,
// each letterboxed into its own cell.
func (demo *Demo) drawTextures(scene window.Rect) {
	if len(demo.textures) == 0 {
		return
	}

	cellWidth := scene.W / len(demo.textures)
	cellHeight := scene.H / 3
	for i, tex := range demo.textures {
		cell := window.NewRect(scene.X+i*cellWidth, scene.Y+scene.H-cellHeight, cellWidth, cellHeight)
		w, h := tex.Size()
		dst := demo.window.InnerRect(cell, float32(w)/float32(h))
		demo.window.Render(window.Rect{}, dst, tex)
	}
}

func (demo *Demo) drawCircles(scene window.Rect) {
	restore := demo.window.WithColor(circleColor)
	defer restore()

	centerX := scene.X + scene.W/2
	centerY := scene.Y + scene.H/3
	maxRadius := min(scene.W, scene.H) / 4
	if maxRadius <= 0 {
		return
	}

	pulse := (math.Sin(demo.elapsed*2) + 1) / 2
	for ring := 1; ring <= 3; ring++ {
		radius := int(float64(maxRadius*ring/3) * (0.75 + 0.25*pulse))
		demo.window.DrawCircle(centerX, centerY, radius)
	}

	// Clock hands as small dots, longest for seconds.
	hour, minute, second := clockAngles(time.Now())
	for i, angle := range []float64{hour, minute, second} {
		x, y := handPosition(centerX, centerY, angle, maxRadius*(i+1)/3)
		demo.window.DrawCircle(x, y, 2)
	}
}

func (demo *Demo) Frames() int {
	return demo.frames
}

func (demo *Demo) Unload() {
	for _, tex := range demo.textures {
		if err := tex.Destroy(); err != nil {
			utils.Warn("Failed to destroy texture: %v", err)
		}
	}
	demo.textures = nil
}
