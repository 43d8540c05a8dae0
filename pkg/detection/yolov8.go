package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/teslashibe/go-objectwatch/pkg/catalog"
)

// ErrOutputShape is returned when a tensor does not look like YOLOv8 output.
var ErrOutputShape = errors.New("detection: unexpected YOLOv8 output shape")

// Candidate is one box surviving the confidence cut, before NMS.
type Candidate struct {
	Box        image.Rectangle
	Confidence float32
	ClassIndex int
}

// DecodeParams describes how to map a YOLOv8 tensor back to the frame.
type DecodeParams struct {
	InputWidth  int     // Model input width
	InputHeight int     // Model input height
	FrameWidth  int     // Source frame width
	FrameHeight int     // Source frame height
	MinScore    float32 // Candidate cut-off
	Classes     int     // Number of class scores per anchor
	Filter      catalog.Filter
}

// DecodeYOLOv8 parses a row-major [4+classes, anchors] YOLOv8 output.
// Each anchor column holds cx, cy, w, h followed by one score per class.
// Anchors whose best class fails the filter or scores under MinScore are dropped.
func DecodeYOLOv8(data []float32, p DecodeParams) ([]Candidate, error) {
	attrs := 4 + p.Classes
	if p.Classes <= 0 || len(data) == 0 || len(data)%attrs != 0 {
		return nil, fmt.Errorf("%w: %d values for %d attributes", ErrOutputShape, len(data), attrs)
	}
	if p.InputWidth <= 0 || p.InputHeight <= 0 {
		return nil, fmt.Errorf("%w: input size %dx%d", ErrOutputShape, p.InputWidth, p.InputHeight)
	}
	anchors := len(data) / attrs

	sx := float32(p.FrameWidth) / float32(p.InputWidth)
	sy := float32(p.FrameHeight) / float32(p.InputHeight)

	var out []Candidate
	for i := 0; i < anchors; i++ {
		best := float32(0)
		bestClass := 0
		for c := 0; c < p.Classes; c++ {
			score := data[(4+c)*anchors+i]
			if score > best {
				best = score
				bestClass = c
			}
		}

		if best < p.MinScore || !p.Filter.Allows(bestClass) {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		box := image.Rect(
			int((cx-w/2)*sx),
			int((cy-h/2)*sy),
			int((cx+w/2)*sx),
			int((cy+h/2)*sy),
		).Intersect(image.Rect(0, 0, p.FrameWidth, p.FrameHeight))
		if box.Empty() {
			continue
		}

		out = append(out, Candidate{Box: box, Confidence: best, ClassIndex: bestClass})
	}
	return out, nil
}

// Name attaches catalog labels to candidates picked by NMS.
func Name(cands []Candidate, keep []int, cat *catalog.Catalog) []Detection {
	dets := make([]Detection, 0, len(keep))
	for _, k := range keep {
		if k < 0 || k >= len(cands) {
			continue
		}
		c := cands[k]
		name, ok := cat.Label(c.ClassIndex)
		if !ok {
			name = fmt.Sprintf("class %d", c.ClassIndex)
		}
		dets = append(dets, Detection{
			Confidence: float64(c.Confidence),
			ClassIndex: c.ClassIndex,
			ClassName:  name,
			Box:        c.Box,
		})
	}
	return dets
}
