// Package camera provides the webcam and window collaborators backed by
// OpenCV (gocv), plus the capture settings they are opened with.
package camera

// Config holds capture settings for the default webcam.
// Zero Width/Height/Framerate leave the driver's choice in place.
type Config struct {
	Device    int // Always the default device; not operator selectable
	Width     int // Frame width in pixels
	Height    int // Frame height in pixels
	Framerate int // Requested FPS

	// MaxDroppedFrames is how many consecutive failed reads mean the device is gone.
	MaxDroppedFrames int
}

// Driver limits accepted by Validate.
const (
	MaxWidth     = 4096
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig opens device 0 at whatever mode the driver picks.
func DefaultConfig() Config {
	return Config{
		Device:           0,
		MaxDroppedFrames: 100,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device != 0 {
		errors = append(errors, "only the default camera (device 0) is supported")
	}
	if c.Width < 0 || c.Width > MaxWidth {
		errors = append(errors, "width must be 0 (driver default) or between 1 and 4096")
	}
	if c.Height < 0 || c.Height > MaxHeight {
		errors = append(errors, "height must be 0 (driver default) or between 1 and 2160")
	}
	if (c.Width == 0) != (c.Height == 0) {
		errors = append(errors, "width and height must be set together")
	}
	if c.Framerate < 0 || c.Framerate > MaxFramerate {
		errors = append(errors, "framerate must be 0 (driver default) or between 1 and 120")
	}
	if c.MaxDroppedFrames < 1 {
		errors = append(errors, "max dropped frames must be at least 1")
	}

	return errors
}
