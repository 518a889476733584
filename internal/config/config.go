// Package config loads window settings from a TOML file and command-line flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"window2d/internal/convert"
	"window2d/internal/utils"
	"window2d/internal/window"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Driver    string `toml:"driver"`
	Resizable bool   `toml:"resizable"`
	VSync     bool   `toml:"vsync"`
	Icon      string `toml:"icon"`

	LogLevel         string `toml:"log_level"`
	ShowBackendInfo  bool   `toml:"show_backend_info"`
	AssetsDir        string `toml:"assets_dir"`
	UpdatesPerSecond int    `toml:"updates_per_second"`
}

func Default() Config {
	return Config{
		Title:            "window2d",
		Width:            800,
		Height:           600,
		Driver:           "raylib",
		Resizable:        true,
		VSync:            true,
		LogLevel:         "warn",
		UpdatesPerSecond: window.DefaultUpdatesPerSecond,
	}
}

// Decode reads TOML on top of the defaults. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Load reads path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Default(), err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	utils.Debug("Loaded config %s", path)
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.UpdatesPerSecond <= 0 {
		return fmt.Errorf("updates_per_second must be positive, got %d", cfg.UpdatesPerSecond)
	}
	if _, err := utils.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// RegisterFlags binds flags to cfg so values given on the command line win over the file.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.Title, "title", cfg.Title, "Window title")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Window width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Window height")
	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "Window driver: "+fmt.Sprint(window.Drivers()))
	fs.StringVar(&cfg.Icon, "icon", cfg.Icon, "Window icon (png, jpeg, bmp or .tex)")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "Extra directory searched for icons and textures")
}

// Override copies every flag explicitly set on parsed into cfg, so a config file
// loaded after flag parsing still loses to the command line.
func (cfg *Config) Override(parsed *flag.FlagSet) error {
	own := flag.NewFlagSet("override", flag.ContinueOnError)
	cfg.RegisterFlags(own)

	var err error
	parsed.Visit(func(f *flag.Flag) {
		if err != nil || own.Lookup(f.Name) == nil {
			return
		}
		err = own.Set(f.Name, f.Value.String())
	})
	return err
}

// Apply pushes the process-wide settings into the logger and asset resolver.
func (cfg Config) Apply() error {
	level, err := utils.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	utils.CurrentLevel = level
	utils.ShowBackendInfo = cfg.ShowBackendInfo
	utils.AssetsDir = cfg.AssetsDir
	return nil
}

// Window converts cfg into window settings, loading and scaling the icon if one is set.
func (cfg Config) Window() (window.Config, error) {
	wc := window.Config{
		Title:     cfg.Title,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Driver:    cfg.Driver,
		Resizable: cfg.Resizable,
		VSync:     cfg.VSync,
	}
	if cfg.Icon == "" {
		return wc, nil
	}

	icon, err := convert.LoadImage(utils.ResolveAssetPath(cfg.Icon))
	if err != nil {
		return wc, fmt.Errorf("load icon: %w", err)
	}
	wc.Icon = convert.ScaleIcon(icon)
	return wc, nil
}
