// Package annotate draws detection boxes and class labels onto frames.
package annotate

import (
	"image"
	"image/color"

	"github.com/teslashibe/go-objectwatch/pkg/detection"
	"github.com/teslashibe/go-objectwatch/pkg/vision"
)

// Style controls how a detection is drawn.
type Style struct {
	BoxColor       color.RGBA
	BoxThickness   int
	LabelColor     color.RGBA
	LabelScale     float64
	LabelThickness int
	LabelOffset    int // Pixels between the label baseline and the box top
}

// DefaultStyle returns magenta boxes with blue labels 10px above the box.
func DefaultStyle() Style {
	return Style{
		BoxColor:       color.RGBA{R: 255, G: 0, B: 255, A: 255},
		BoxThickness:   3,
		LabelColor:     color.RGBA{R: 0, G: 0, B: 255, A: 255},
		LabelScale:     1,
		LabelThickness: 2,
		LabelOffset:    10,
	}
}

// LabelOrigin returns where a box's label baseline starts.
func (s Style) LabelOrigin(box image.Rectangle) image.Point {
	x, y, _, _ := detection.XYWH(box)
	return image.Pt(x, y-s.LabelOffset)
}

// Draw annotates every qualifying detection onto f and returns them.
// Detections under detection.Threshold are skipped silently.
func Draw(f vision.Frame, dets []detection.Detection, s Style) []detection.Detection {
	drawn := detection.Qualifying(dets)
	for _, d := range drawn {
		f.DrawRect(detection.Outline(d.Box), s.BoxColor, s.BoxThickness)
		f.DrawLabel(d.ClassName, s.LabelOrigin(d.Box), s.LabelColor, s.LabelScale, s.LabelThickness)
	}
	return drawn
}
