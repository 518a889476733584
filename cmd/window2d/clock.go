package main

import (
	"math"
	"time"
)

// clockAngles returns the hour, minute and second hand angles of t in degrees,
// clockwise from twelve o'clock.
func clockAngles(t time.Time) (hour, minute, second float64) {
	h, m, s := t.Clock()
	millisecond := t.Nanosecond() / 1e6

	timeOfDay := (float64(h*3600+m*60+s) + float64(millisecond)/1000.0) / 86400.0

	hour = math.Mod(timeOfDay*720, 360)
	minute = math.Mod(timeOfDay*24, 1) * 360
	second = math.Mod(timeOfDay*1440, 1) * 360
	return hour, minute, second
}

// handPosition is the tip of a hand of the given length at angle degrees.
func handPosition(centerX, centerY int, angle float64, length int) (int, int) {
	rad := angle * math.Pi / 180
	x := centerX + int(math.Round(math.Sin(rad)*float64(length)))
	y := centerY - int(math.Round(math.Cos(rad)*float64(length)))
	return x, y
}
