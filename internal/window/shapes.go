package window

import "math"

// midpointCircle walks one octant of a circle outline with integer error stepping
// and hands the 8 reflected points of every step to plot as one batch.
func midpointCircle(centerX, centerY, radius int, plot func(points []Point)) {
	diameter := radius * 2

	x := radius - 1
	y := 0
	tx := 1
	ty := 1
	err := tx - diameter

	var points [8]Point
	for x >= y {
		points = [8]Point{
			{centerX + x, centerY - y},
			{centerX + x, centerY + y},
			{centerX - x, centerY - y},
			{centerX - x, centerY + y},
			{centerX + y, centerY - x},
			{centerX + y, centerY + x},
			{centerX - y, centerY - x},
			{centerX - y, centerY + x},
		}
		plot(points[:])

		// Both steps may apply in the same iteration.
		if err <= 0 {
			y++
			err += ty
			ty += 2
		}
		if err > 0 {
			x--
			tx += 2
			err += tx - diameter
		}
	}
}

// InnerRect returns the largest rect with width/height == aspectRatio that fits centred in parent.
// A degenerate parent or a non-positive ratio yields an empty rect at the parent's centre.
func InnerRect(parent Rect, aspectRatio float32) Rect {
	if parent.W <= 0 || parent.H <= 0 || !(aspectRatio > 0) || math.IsInf(float64(aspectRatio), 1) {
		return Rect{X: parent.X + parent.W/2, Y: parent.Y + parent.H/2}
	}

	// Clamp before converting; a huge quotient overflows int.
	var width, height int
	if float32(parent.W)/float32(parent.H) > aspectRatio {
		height = int(min(float32(parent.H), float32(parent.W)/aspectRatio))
		width = int(float32(height) * aspectRatio)
	} else {
		width = int(min(float32(parent.W), float32(parent.H)*aspectRatio))
		height = int(float32(width) / aspectRatio)
	}

	return Rect{
		X: parent.X + (parent.W-width)/2,
		Y: parent.Y + (parent.H-height)/2,
		W: width,
		H: height,
	}
}
