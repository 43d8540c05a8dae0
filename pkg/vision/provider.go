// Package vision defines the collaborators the detection loop talks to:
// a camera that yields frames, a detector that reads them, and a display
// that shows them and reports key presses.
package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/teslashibe/go-objectwatch/pkg/catalog"
	"github.com/teslashibe/go-objectwatch/pkg/detection"
)

// ErrEmptyFrame is returned when a frame holds no pixels.
var ErrEmptyFrame = errors.New("vision: empty frame")

// NoKey is returned by PollKey when nothing was pressed.
const NoKey = -1

// Frame is a captured image that can be annotated in place.
type Frame interface {
	Bounds() image.Rectangle
	DrawRect(r image.Rectangle, c color.RGBA, thickness int)
	DrawLabel(text string, origin image.Point, c color.RGBA, scale float64, thickness int)
}

// Camera yields frames from one exclusively owned device.
// A frame returned by Read is valid until the next Read or Close.
type Camera interface {
	Read() (Frame, bool)
	Close() error
}

// CameraOpener opens the default camera.
type CameraOpener func() (Camera, error)

// Detector runs the object-detection model over a frame.
type Detector interface {
	Detect(ctx context.Context, f Frame, filter catalog.Filter) ([]detection.Detection, error)
	Close() error
}

// Display shows frames in a named window and polls the keyboard.
type Display interface {
	Show(f Frame) error
	// PollKey waits up to timeout for a key and returns its code, or NoKey.
	PollKey(timeout time.Duration) int
	Close() error
}

// DisplayOpener opens a window with the given title.
type DisplayOpener func(title string) (Display, error)
