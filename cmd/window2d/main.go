package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"runtime"
	"strings"

	_ "window2d/internal/backend/raylib"
	_ "window2d/internal/backend/sdl2"
	_ "window2d/internal/backend/soft"
	"window2d/internal/config"
	"window2d/internal/convert"
	"window2d/internal/utils"
	"window2d/internal/window"
)

func init() {
	// Native windowing must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		utils.Error("%v", err)
		fmt.Fprintln(os.Stderr, "window2d: exiting")
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("window2d", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a TOML config file")
	pkgPath := flags.String("pkg", "", "Path to a .pkg bundle extracted into a temporary assets dir")
	texturePaths := flags.String("texture", "", "Comma separated images or .tex files to draw")
	frames := flags.Int("frames", 0, "Stop after this many frames (0 runs until the window closes)")
	screenshot := flags.String("screenshot", "", "Write the last frame to this PNG file")
	debugFlag := flags.Bool("debug", false, "Enable verbose debug logging")

	cfg := config.Default()
	cfg.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := loaded.Override(flags); err != nil {
			return fmt.Errorf("apply flags: %w", err)
		}
		cfg = loaded
	}
	if *debugFlag {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Apply(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if *pkgPath != "" {
		dir, err := os.MkdirTemp("", "window2d-assets-")
		if err != nil {
			return fmt.Errorf("create assets dir: %w", err)
		}
		defer os.RemoveAll(dir)

		utils.Info("Unpacking %s...", *pkgPath)
		if _, err := convert.ExtractBundle(*pkgPath, dir); err != nil {
			return fmt.Errorf("extract pkg: %w", err)
		}
		utils.AssetsDir = dir
	}

	windowConfig, err := cfg.Window()
	if err != nil {
		return err
	}

	utils.Info("--- window2d start (%s) ---", cfg.Driver)
	win, err := window.New(windowConfig)
	if err != nil {
		return err
	}
	defer win.Close()

	demo := NewDemo(win, loadImages(*texturePaths))
	defer demo.Unload()

	demo.Screenshot = *screenshot
	return demo.Run(cfg.UpdatesPerSecond, *frames)
}

func loadImages(list string) []image.Image {
	if list == "" {
		return nil
	}
	var paths []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, utils.ResolveAssetPath(p))
		}
	}
	return convert.LoadImages(paths)
}
