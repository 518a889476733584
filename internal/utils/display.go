package utils

import (
	"errors"
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

var (
	XConn *xgb.Conn
	XRoot xproto.Window
)

func InitX11() error {
	var err error
	XConn, err = xgb.NewConn()
	if err != nil {
		return err
	}

	if err := randr.Init(XConn); err != nil {
		XConn.Close()
		XConn = nil
		return err
	}
	// Screen resources and CRTC queries need RandR 1.3.
	if _, err := randr.QueryVersion(XConn, 1, 3).Reply(); err != nil {
		XConn.Close()
		XConn = nil
		return err
	}

	setup := xproto.Setup(XConn)
	XRoot = setup.DefaultScreen(XConn).Root
	return nil
}

func CloseX11() {
	if XConn != nil {
		XConn.Close()
		XConn = nil
	}
}

// Crtc is the screen area one monitor scans out and the rate of its mode.
type Crtc struct {
	X, Y          int
	Width, Height int
	Rate          float64
}

func (c Crtc) contains(x, y int) bool {
	return x >= c.X && x < c.X+c.Width && y >= c.Y && y < c.Y+c.Height
}

// modeRate is the vertical refresh of a mode in Hz, 0 for modes without timings.
func modeRate(mode randr.ModeInfo) float64 {
	if mode.Htotal == 0 || mode.Vtotal == 0 {
		return 0
	}
	return float64(mode.DotClock) / (float64(mode.Htotal) * float64(mode.Vtotal))
}

// rateAt picks the rate of the CRTC holding (x, y), or the first active one.
func rateAt(crtcs []Crtc, x, y int) int {
	fallback := 0
	for _, crtc := range crtcs {
		if crtc.Rate <= 0 {
			continue
		}
		if crtc.contains(x, y) {
			return int(math.Round(crtc.Rate))
		}
		if fallback == 0 {
			fallback = int(math.Round(crtc.Rate))
		}
	}
	return fallback
}

func x11Crtcs() ([]Crtc, error) {
	resources, err := randr.GetScreenResourcesCurrent(XConn, XRoot).Reply()
	if err != nil {
		return nil, err
	}

	modes := make(map[uint32]randr.ModeInfo, len(resources.Modes))
	for _, mode := range resources.Modes {
		modes[mode.Id] = mode
	}

	crtcs := make([]Crtc, 0, len(resources.Crtcs))
	for _, id := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(XConn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, err
		}
		if info.Mode == 0 {
			continue
		}
		crtcs = append(crtcs, Crtc{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
			Rate:   modeRate(modes[uint32(info.Mode)]),
		})
	}
	return crtcs, nil
}

// X11RefreshRate reports the refresh rate of the monitor showing the screen point (x, y).
// When RandR lists no matching CRTC it falls back to the rate of the screen's current
// configuration, which on multi-monitor setups is not tied to any one monitor.
func X11RefreshRate(x, y int) (int, error) {
	if XConn == nil {
		if err := InitX11(); err != nil {
			return 0, err
		}
	}

	crtcs, err := x11Crtcs()
	if err != nil {
		Debug("RandR CRTC query failed: %v", err)
	} else if rate := rateAt(crtcs, x, y); rate > 0 {
		return rate, nil
	}

	reply, err := randr.GetScreenInfo(XConn, XRoot).Reply()
	if err != nil {
		return 0, err
	}
	if reply.Rate == 0 {
		return 0, errors.New("randr reported a 0 Hz mode")
	}

	return int(reply.Rate), nil
}
