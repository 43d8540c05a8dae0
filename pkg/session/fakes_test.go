package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/teslashibe/go-objectwatch/pkg/catalog"
	"github.com/teslashibe/go-objectwatch/pkg/console"
	"github.com/teslashibe/go-objectwatch/pkg/detection"
	"github.com/teslashibe/go-objectwatch/pkg/vision"
)

// fakeCamera serves blank frames, optionally failing some reads.
type fakeCamera struct {
	reads  int
	closed int
	drop   func(read int) bool
}

func (c *fakeCamera) Read() (vision.Frame, bool) {
	c.reads++
	if c.drop != nil && c.drop(c.reads) {
		return nil, false
	}
	return vision.NewImageFrame(64, 48, color.RGBA{0, 0, 0, 255}), true
}

func (c *fakeCamera) Close() error {
	c.closed++
	return nil
}

// cameraFactory counts opens and hands out fakeCameras.
type cameraFactory struct {
	opened  int
	err     error
	cameras []*fakeCamera
	drop    func(read int) bool
}

func (f *cameraFactory) open() (vision.Camera, error) {
	f.opened++
	if f.err != nil {
		return nil, f.err
	}
	c := &fakeCamera{drop: f.drop}
	f.cameras = append(f.cameras, c)
	return c, nil
}

func (f *cameraFactory) totalReads() int {
	n := 0
	for _, c := range f.cameras {
		n += c.reads
	}
	return n
}

// fakeDisplay replays scripted key presses, one per poll.
type fakeDisplay struct {
	title  string
	shows  int
	polls  int
	closed int
	keys   []int
	onPoll func(poll int)
}

func (d *fakeDisplay) Show(vision.Frame) error {
	d.shows++
	return nil
}

func (d *fakeDisplay) PollKey(time.Duration) int {
	d.polls++
	if d.onPoll != nil {
		d.onPoll(d.polls)
	}
	if len(d.keys) == 0 {
		return vision.NoKey
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k
}

func (d *fakeDisplay) Close() error {
	d.closed++
	return nil
}

// displayFactory hands out one scripted display per session.
type displayFactory struct {
	scripts  [][]int
	displays []*fakeDisplay
	onPoll   func(poll int)
}

func (f *displayFactory) open(title string) (vision.Display, error) {
	var keys []int
	if len(f.scripts) > 0 {
		keys = f.scripts[0]
		f.scripts = f.scripts[1:]
	}
	d := &fakeDisplay{title: title, keys: keys, onPoll: f.onPoll}
	f.displays = append(f.displays, d)
	return d, nil
}

func (f *displayFactory) totals() (shows, polls int) {
	for _, d := range f.displays {
		shows += d.shows
		polls += d.polls
	}
	return shows, polls
}

// fakeDetector returns canned detections and records every request.
type fakeDetector struct {
	filters []catalog.Filter
	result  []detection.Detection
	err     error
}

func (d *fakeDetector) Detect(_ context.Context, _ vision.Frame, filter catalog.Filter) ([]detection.Detection, error) {
	d.filters = append(d.filters, filter)
	if d.err != nil {
		return nil, d.err
	}
	out := make([]detection.Detection, len(d.result))
	copy(out, d.result)
	return out, nil
}

func (d *fakeDetector) Close() error { return nil }

// scriptedPrompter answers from a list, then reports closed input.
type scriptedPrompter struct {
	answers  []string
	prompts  int
	notified []string
	err      error
	answered func() // Runs after an answer is taken, before it is returned
}

func (p *scriptedPrompter) Prompt(ctx context.Context, _ string) (string, error) {
	p.prompts++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", console.ErrInputClosed
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	if p.answered != nil {
		p.answered()
	}
	return a, nil
}

func (p *scriptedPrompter) Notify(msg string) {
	p.notified = append(p.notified, msg)
}

// signalWriter closes written on the first write, letting a test wait until
// a prompt is on screen.
type signalWriter struct {
	once    sync.Once
	written chan struct{}
}

func newSignalWriter() *signalWriter {
	return &signalWriter{written: make(chan struct{})}
}

func (w *signalWriter) Write(b []byte) (int, error) {
	w.once.Do(func() { close(w.written) })
	return len(b), nil
}

var errBoom = errors.New("boom")

func det(conf float64, class int, name string) detection.Detection {
	return detection.Detection{
		Confidence: conf,
		ClassIndex: class,
		ClassName:  name,
		Box:        image.Rect(4, 4, 20, 20),
	}
}
