// Package session runs the prompt/detect cycle: ask the operator which class
// to look for, then capture, detect, annotate and show frames until a key
// sends control back to the prompt or ends the program.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/teslashibe/go-objectwatch/internal/log"
	"github.com/teslashibe/go-objectwatch/pkg/annotate"
	"github.com/teslashibe/go-objectwatch/pkg/catalog"
	"github.com/teslashibe/go-objectwatch/pkg/console"
	"github.com/teslashibe/go-objectwatch/pkg/detection"
	"github.com/teslashibe/go-objectwatch/pkg/metrics"
	"github.com/teslashibe/go-objectwatch/pkg/vision"
)

// ErrCameraUnavailable is returned when the webcam cannot be opened or stops
// delivering frames.
var ErrCameraUnavailable = errors.New("session: camera unavailable")

// Key codes as returned by vision.Display.PollKey.
const (
	KeyQ   = 'q'
	KeyEsc = 27
)

// Operator-facing messages.
const (
	msgCameraOpen = "Error: Unable to open webcam"
	msgCameraLost = "Error: Webcam stopped delivering frames"
)

// Config holds the fixed behaviour of the loop.
type Config struct {
	PromptMessage    string
	WindowTitle      string
	ReselectKey      int
	ExitKey          int
	KeyPollTimeout   time.Duration
	MaxDroppedFrames int
	Style            annotate.Style
}

// DefaultConfig returns the standard prompt, window and key bindings.
func DefaultConfig() Config {
	return Config{
		PromptMessage:    "Enter the object to detect: ",
		WindowTitle:      "Objects Detected",
		ReselectKey:      KeyQ,
		ExitKey:          KeyEsc,
		KeyPollTimeout:   time.Millisecond,
		MaxDroppedFrames: 100,
		Style:            annotate.DefaultStyle(),
	}
}

// Deps are the collaborators a Runner drives.
type Deps struct {
	Catalog     *catalog.Catalog
	Detector    vision.Detector
	OpenCamera  vision.CameraOpener
	OpenDisplay vision.DisplayOpener
	Prompter    console.Prompter
	Metrics     *metrics.Metrics // Optional
}

// Runner is the Prompting/Detecting state machine.
type Runner struct {
	cfg   Config
	deps  Deps
	state State

	filter     catalog.Filter
	filterName string
}

// New validates deps and creates a Runner.
func New(cfg Config, deps Deps) (*Runner, error) {
	switch {
	case deps.Catalog == nil:
		return nil, errors.New("session: catalog required")
	case deps.Detector == nil:
		return nil, errors.New("session: detector required")
	case deps.OpenCamera == nil:
		return nil, errors.New("session: camera opener required")
	case deps.OpenDisplay == nil:
		return nil, errors.New("session: display opener required")
	case deps.Prompter == nil:
		return nil, errors.New("session: prompter required")
	}
	if cfg.MaxDroppedFrames < 1 {
		cfg.MaxDroppedFrames = 1
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	return &Runner{cfg: cfg, deps: deps, state: Prompting}, nil
}

// State returns the current state.
func (r *Runner) State() State {
	return r.state
}

// Run drives the state machine from Prompting until Done.
// It returns nil on a normal exit, and an error wrapping ErrCameraUnavailable
// when the webcam could not be used.
func (r *Runner) Run(ctx context.Context) error {
	r.state = Prompting

	var result error
	for r.state != Done {
		var (
			ev  Event
			err error
		)
		switch r.state {
		case Prompting:
			ev, err = r.prompt(ctx)
		case Detecting:
			ev, err = r.detect(ctx)
		}
		if err != nil {
			result = err
		}

		next, terr := Next(r.state, ev)
		if terr != nil {
			return terr
		}
		log.Debug("state transition", "from", r.state, "event", ev, "to", next)
		r.state = next
	}
	return result
}

func (r *Runner) prompt(ctx context.Context) (Event, error) {
	name, err := r.deps.Prompter.Prompt(ctx, r.cfg.PromptMessage)
	switch {
	case ctx.Err() != nil:
		return Cancelled, nil
	case errors.Is(err, console.ErrInputClosed):
		return InputClosed, nil
	case err != nil:
		return Failed, fmt.Errorf("session: prompt: %w", err)
	}

	filter, err := r.deps.Catalog.Resolve(name)
	if err != nil {
		var uce *catalog.UnknownClassError
		if !errors.As(err, &uce) {
			return Failed, err
		}
		msg := fmt.Sprintf("unrecognized class name %q", uce.Name)
		if len(uce.Suggestions) > 0 {
			msg += "; did you mean: " + strings.Join(uce.Suggestions, ", ")
		}
		r.deps.Prompter.Notify(msg)
		log.Debug("unknown class", "name", name)
		return UnknownClass, nil
	}

	r.filter = filter
	r.filterName = name
	return FilterChosen, nil
}

func (r *Runner) detect(ctx context.Context) (ev Event, err error) {
	logger := log.With("session_id", uuid.NewString(), "filter", r.describeFilter())

	cam, err := r.deps.OpenCamera()
	if err != nil {
		r.deps.Prompter.Notify(msgCameraOpen)
		logger.Error("camera open failed", "error", err)
		return CameraUnavailable, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	display, err := r.deps.OpenDisplay(r.cfg.WindowTitle)
	if err != nil {
		logger.Error("display open failed", "error", err)
		return Failed, multierr.Append(fmt.Errorf("session: open display: %w", err), cam.Close())
	}

	stats := r.deps.Metrics.StartSession()
	logger.Info("session started")
	r.deps.Prompter.Notify(fmt.Sprintf("Detecting %s. Press %s to choose another object, %s to quit.",
		r.describeFilter(), keyName(r.cfg.ReselectKey), keyName(r.cfg.ExitKey)))

	defer func() {
		if cerr := multierr.Combine(cam.Close(), display.Close()); cerr != nil {
			logger.Warn("release failed", "error", cerr)
		}
		logger.Info("session ended", append([]any{"reason", ev.String()}, stats.Summary().LogArgs()...)...)
	}()

	dropped := 0
	for {
		if ctx.Err() != nil {
			return Cancelled, nil
		}

		frame, ok := cam.Read()
		if !ok {
			stats.FrameDropped()
			dropped++
			if dropped >= r.cfg.MaxDroppedFrames {
				r.deps.Prompter.Notify(msgCameraLost)
				return CameraUnavailable, fmt.Errorf("%w: %d consecutive dropped frames", ErrCameraUnavailable, dropped)
			}
		} else {
			dropped = 0
			stats.FrameRead()
			if cancelled := r.detectAndDraw(ctx, logger, stats, frame); cancelled {
				return Cancelled, nil
			}
			if serr := display.Show(frame); serr != nil {
				logger.Warn("show failed", "error", serr)
			}
		}

		switch display.PollKey(r.cfg.KeyPollTimeout) {
		case r.cfg.ReselectKey:
			return ReselectKey, nil
		case r.cfg.ExitKey:
			return ExitKey, nil
		}
	}
}

// detectAndDraw issues the frame's single detection request and draws the result.
// It reports true when the request failed because ctx was cancelled.
func (r *Runner) detectAndDraw(ctx context.Context, logger *slog.Logger, stats *metrics.Session, frame vision.Frame) bool {
	dets, err := r.deps.Detector.Detect(ctx, frame, r.filter)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		stats.DetectFailed()
		logger.Warn("detection failed", "error", err)
		return false
	}

	dets = lo.Filter(dets, func(d detection.Detection, _ int) bool {
		return r.filter.Allows(d.ClassIndex)
	})
	drawn := annotate.Draw(frame, dets, r.cfg.Style)
	stats.Detected(len(dets), drawn)
	return false
}

func (r *Runner) describeFilter() string {
	if r.filter.All() {
		return "all classes"
	}
	return fmt.Sprintf("%q", r.filterName)
}

func keyName(code int) string {
	switch code {
	case KeyEsc:
		return "Esc"
	case ' ':
		return "Space"
	default:
		return string(rune(code))
	}
}
