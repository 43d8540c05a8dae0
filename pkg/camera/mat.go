package camera

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-objectwatch/pkg/vision"
)

// ErrUnsupportedFrame is returned for frames that cannot become a Mat.
var ErrUnsupportedFrame = errors.New("camera: unsupported frame type")

// MatFrame is a Frame backed by an OpenCV Mat (BGR).
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame wraps m. The caller keeps ownership of m.
func NewMatFrame(m gocv.Mat) *MatFrame {
	return &MatFrame{mat: m}
}

// Bounds returns the frame size.
func (f *MatFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.mat.Cols(), f.mat.Rows())
}

// DrawRect draws the outline of r.
func (f *MatFrame) DrawRect(r image.Rectangle, c color.RGBA, thickness int) {
	gocv.Rectangle(&f.mat, r, c, thickness)
}

// DrawLabel draws text in Hershey simplex with its baseline at origin.
func (f *MatFrame) DrawLabel(text string, origin image.Point, c color.RGBA, scale float64, thickness int) {
	gocv.PutText(&f.mat, text, origin, gocv.FontHersheySimplex, scale, c, thickness)
}

// AsMat returns a BGR Mat for any supported frame. The release func must be
// called when the Mat is no longer needed; it is a no-op for MatFrames.
func AsMat(f vision.Frame) (gocv.Mat, func(), error) {
	switch fr := f.(type) {
	case *MatFrame:
		if fr.mat.Empty() {
			return gocv.Mat{}, nil, vision.ErrEmptyFrame
		}
		return fr.mat, func() {}, nil
	case *vision.ImageFrame:
		m, err := gocv.ImageToMatRGB(fr.Image())
		if err != nil {
			return gocv.Mat{}, nil, fmt.Errorf("camera: convert image: %w", err)
		}
		return m, func() { m.Close() }, nil
	default:
		return gocv.Mat{}, nil, fmt.Errorf("%w: %T", ErrUnsupportedFrame, f)
	}
}
