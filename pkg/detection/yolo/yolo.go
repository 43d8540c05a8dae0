// Package yolo runs a YOLOv8 ONNX model through OpenCV's DNN module.
package yolo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-objectwatch/pkg/camera"
	"github.com/teslashibe/go-objectwatch/pkg/catalog"
	"github.com/teslashibe/go-objectwatch/pkg/debug"
	"github.com/teslashibe/go-objectwatch/pkg/detection"
	"github.com/teslashibe/go-objectwatch/pkg/vision"
)

// ErrModelNotFound is returned when the model file does not exist.
var ErrModelNotFound = errors.New("yolo: model file not found")

// Config holds YOLO detector configuration
type Config struct {
	ModelPath   string
	MinScore    float32 // Candidate cut-off before NMS
	NMSThresh   float32
	InputWidth  int
	InputHeight int
}

// DefaultConfig returns defaults for YOLOv8n exported to ONNX.
// MinScore is below detection.Threshold so that the drawing rule decides.
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/yolov8n.onnx",
		MinScore:    0.25,
		NMSThresh:   0.45,
		InputWidth:  640,
		InputHeight: 640,
	}
}

// Detector uses YOLOv8 for general object detection
type Detector struct {
	net       gocv.Net
	config    Config
	catalog   *catalog.Catalog
	mu        sync.Mutex
	inputSize image.Point
}

// New loads the model. The catalog must list classes in model output order.
func New(cfg Config, cat *catalog.Catalog) (*Detector, error) {
	if cat == nil {
		return nil, errors.New("yolo: catalog required")
	}
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("yolo: failed to load model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Detector{
		net:       net,
		config:    cfg,
		catalog:   cat,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect runs one inference over f, restricted to filter.
func (d *Detector) Detect(ctx context.Context, f vision.Frame, filter catalog.Filter) ([]detection.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, release, err := camera.AsMat(f)
	if err != nil {
		return nil, err
	}
	defer release()

	d.mu.Lock()
	defer d.mu.Unlock()

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	// YOLOv8 output: [1, 4+classes, anchors]
	sizes := output.Size()
	if len(sizes) != 3 {
		return nil, fmt.Errorf("%w: dims %v", detection.ErrOutputShape, sizes)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("yolo: read output: %w", err)
	}

	cands, err := detection.DecodeYOLOv8(data, detection.DecodeParams{
		InputWidth:  d.config.InputWidth,
		InputHeight: d.config.InputHeight,
		FrameWidth:  img.Cols(),
		FrameHeight: img.Rows(),
		MinScore:    d.config.MinScore,
		Classes:     sizes[1] - 4,
		Filter:      filter,
	})
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	boxes := make([]image.Rectangle, len(cands))
	scores := make([]float32, len(cands))
	for i, c := range cands {
		boxes[i] = c.Box
		scores[i] = c.Confidence
	}
	keep := gocv.NMSBoxes(boxes, scores, d.config.MinScore, d.config.NMSThresh)

	dets := detection.Name(cands, keep, d.catalog)
	debug.Log("🔍 YOLO found %d object(s) [%s]\n", len(dets), filter)
	return dets, nil
}

// Close releases the detector resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
