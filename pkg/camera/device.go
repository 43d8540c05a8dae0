package camera

import (
	"fmt"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-objectwatch/pkg/debug"
	"github.com/teslashibe/go-objectwatch/pkg/vision"
)

// Device is the default webcam opened through OpenCV.
type Device struct {
	capture *gocv.VideoCapture
	frame   *MatFrame
}

// Opener returns a vision.CameraOpener for cfg.
func Opener(cfg Config) vision.CameraOpener {
	return func() (vision.Camera, error) {
		return OpenDevice(cfg)
	}
}

// OpenDevice opens the default camera. No retry is attempted.
func OpenDevice(cfg Config) (*Device, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %s", strings.Join(errs, "; "))
	}

	capture, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera: device %d not opened", cfg.Device)
	}

	if cfg.Width > 0 && cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Framerate > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}

	debug.Log("📷 Camera %d opened (%.0fx%.0f)\n", cfg.Device,
		capture.Get(gocv.VideoCaptureFrameWidth), capture.Get(gocv.VideoCaptureFrameHeight))

	return &Device{
		capture: capture,
		frame:   NewMatFrame(gocv.NewMat()),
	}, nil
}

// Read grabs the next frame into the device's reusable buffer.
func (d *Device) Read() (vision.Frame, bool) {
	if ok := d.capture.Read(&d.frame.mat); !ok || d.frame.mat.Empty() {
		return nil, false
	}
	return d.frame, true
}

// Close releases the device and its frame buffer.
func (d *Device) Close() error {
	d.frame.mat.Close()
	return d.capture.Close()
}

// Window is an OpenCV highgui window.
type Window struct {
	win *gocv.Window
}

// WindowOpener returns a vision.DisplayOpener creating OpenCV windows.
func WindowOpener() vision.DisplayOpener {
	return func(title string) (vision.Display, error) {
		return NewWindow(title), nil
	}
}

// NewWindow creates a named window. It appears on the first Show.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show renders f in the window.
func (w *Window) Show(f vision.Frame) error {
	m, release, err := AsMat(f)
	if err != nil {
		return err
	}
	defer release()
	w.win.IMShow(m)
	return nil
}

// PollKey waits up to timeout (at least 1ms) for a key press.
func (w *Window) PollKey(timeout time.Duration) int {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	key := w.win.WaitKey(ms)
	if key < 0 {
		return vision.NoKey
	}
	return key & 0xFF
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
