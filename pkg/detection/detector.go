// Package detection provides object detection results and the rules for
// deciding which of them get drawn.
package detection

import (
	"image"

	"github.com/samber/lo"
)

// Threshold is the minimum confidence for a detection to be annotated.
// Fixed, not configurable.
const Threshold = 0.5

// Detection represents one object the model found in a frame
type Detection struct {
	Confidence float64         // Detection confidence (0-1)
	ClassIndex int             // Position in the class catalog
	ClassName  string          // Human-readable class name
	Box        image.Rectangle // x_min,y_min to x_max,y_max in pixels
}

// Qualifies reports whether the detection is confident enough to draw.
func (d Detection) Qualifies() bool {
	return d.Confidence >= Threshold
}

// XYWH converts a corner box (x_min,y_min,x_max,y_max) into (x, y, width, height).
func XYWH(box image.Rectangle) (x, y, w, h int) {
	return box.Min.X, box.Min.Y, box.Max.X - box.Min.X, box.Max.Y - box.Min.Y
}

// Outline returns the rectangle drawn for a box: (x, y) to (x+w, y+h).
func Outline(box image.Rectangle) image.Rectangle {
	x, y, w, h := XYWH(box)
	return image.Rect(x, y, x+w, y+h)
}

// Qualifying returns the detections at or above Threshold, in order.
func Qualifying(dets []Detection) []Detection {
	return lo.Filter(dets, func(d Detection, _ int) bool {
		return d.Qualifies()
	})
}
