// Package metrics counts what the detection loop does.
// Counters live on a private Prometheus registry; nothing is served over the network.
package metrics

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/teslashibe/go-objectwatch/pkg/detection"
)

// Metrics holds process-wide counters.
type Metrics struct {
	FramesRead         prometheus.Counter
	FramesDropped      prometheus.Counter
	DetectErrors       prometheus.Counter
	DetectionsReturned prometheus.Counter
	DetectionsDrawn    prometheus.Counter
	Sessions           prometheus.Counter
	DrawnByClass       *prometheus.CounterVec

	registry *prometheus.Registry
	clock    clock.Clock
}

// New creates a Metrics instance on a fresh registry.
// A nil clock uses the wall clock.
func New(clk clock.Clock) *Metrics {
	if clk == nil {
		clk = clock.New()
	}
	m := &Metrics{
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objectwatch_frames_read_total",
			Help: "Frames read from the camera",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objectwatch_frames_dropped_total",
			Help: "Camera reads that returned no frame",
		}),
		DetectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objectwatch_detect_errors_total",
			Help: "Detection requests that failed",
		}),
		DetectionsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objectwatch_detections_returned_total",
			Help: "Detections returned by the model",
		}),
		DetectionsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objectwatch_detections_drawn_total",
			Help: "Detections at or above the confidence threshold",
		}),
		Sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objectwatch_sessions_total",
			Help: "Detection sessions started",
		}),
		DrawnByClass: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "objectwatch_drawn_by_class_total",
			Help: "Drawn detections per class",
		}, []string{"class"}),
		registry: prometheus.NewRegistry(),
		clock:    clk,
	}

	m.registry.MustRegister(
		m.FramesRead,
		m.FramesDropped,
		m.DetectErrors,
		m.DetectionsReturned,
		m.DetectionsDrawn,
		m.Sessions,
		m.DrawnByClass,
	)
	return m
}

// Gather returns the current value of every counter, keyed by metric name.
// Labelled counters are summed.
func (m *Metrics) Gather() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		out[mf.GetName()] = sumCounters(mf.GetMetric())
	}
	return out, nil
}

func sumCounters(ms []*dto.Metric) float64 {
	var total float64
	for _, m := range ms {
		total += m.GetCounter().GetValue()
	}
	return total
}

// StartSession begins per-session accounting.
func (m *Metrics) StartSession() *Session {
	m.Sessions.Inc()
	return &Session{m: m, start: m.clock.Now()}
}

// Session tracks one detection run.
type Session struct {
	m        *Metrics
	start    time.Time
	frames   int
	dropped  int
	returned int
	drawn    int
	errors   int
}

// FrameRead records a successful camera read.
func (s *Session) FrameRead() {
	s.frames++
	s.m.FramesRead.Inc()
}

// FrameDropped records a camera read that returned nothing.
func (s *Session) FrameDropped() {
	s.dropped++
	s.m.FramesDropped.Inc()
}

// DetectFailed records a failed detection request.
func (s *Session) DetectFailed() {
	s.errors++
	s.m.DetectErrors.Inc()
}

// Detected records what the model returned and what was drawn.
func (s *Session) Detected(returned int, drawn []detection.Detection) {
	s.returned += returned
	s.drawn += len(drawn)
	s.m.DetectionsReturned.Add(float64(returned))
	s.m.DetectionsDrawn.Add(float64(len(drawn)))
	for _, d := range drawn {
		s.m.DrawnByClass.WithLabelValues(d.ClassName).Inc()
	}
}

// Summary is a snapshot of one session.
type Summary struct {
	Frames       int
	Dropped      int
	Returned     int
	Drawn        int
	DetectErrors int
	Duration     time.Duration
	FPS          float64
}

// Summary returns the session totals up to now.
func (s *Session) Summary() Summary {
	elapsed := s.m.clock.Since(s.start)
	sum := Summary{
		Frames:       s.frames,
		Dropped:      s.dropped,
		Returned:     s.returned,
		Drawn:        s.drawn,
		DetectErrors: s.errors,
		Duration:     elapsed,
	}
	if elapsed > 0 {
		sum.FPS = float64(s.frames) / elapsed.Seconds()
	}
	return sum
}

// LogArgs renders the summary as slog key/value pairs.
func (s Summary) LogArgs() []any {
	return []any{
		"frames", s.Frames,
		"dropped", s.Dropped,
		"detections", s.Returned,
		"drawn", s.Drawn,
		"detect_errors", s.DetectErrors,
		"duration", s.Duration.Round(time.Millisecond),
		"fps", float64(int(s.FPS*10)) / 10,
	}
}
