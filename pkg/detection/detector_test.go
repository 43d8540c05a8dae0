package detection

import (
	"errors"
	"image"
	"testing"

	"github.com/teslashibe/go-objectwatch/pkg/catalog"
)

func TestDetection_Qualifies(t *testing.T) {
	tests := []struct {
		name   string
		conf   float64
		expect bool
	}{
		{name: "exactly at threshold", conf: 0.5, expect: true},
		{name: "just below threshold", conf: 0.499999, expect: false},
		{name: "zero", conf: 0, expect: false},
		{name: "certain", conf: 1.0, expect: true},
		{name: "above threshold", conf: 0.73, expect: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Detection{Confidence: tc.conf}
			if got := d.Qualifies(); got != tc.expect {
				t.Errorf("Qualifies(%v): got %v, want %v", tc.conf, got, tc.expect)
			}
		})
	}
}

func TestXYWH(t *testing.T) {
	tests := []struct {
		name                   string
		box                    image.Rectangle
		expX, expY, expW, expH int
	}{
		{"origin", image.Rect(0, 0, 10, 20), 0, 0, 10, 20},
		{"offset", image.Rect(100, 50, 180, 210), 100, 50, 80, 160},
		{"one pixel", image.Rect(7, 9, 8, 10), 7, 9, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, w, h := XYWH(tc.box)
			if x != tc.expX || y != tc.expY || w != tc.expW || h != tc.expH {
				t.Errorf("XYWH(%v): got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					tc.box, x, y, w, h, tc.expX, tc.expY, tc.expW, tc.expH)
			}
		})
	}
}

func TestOutline_IsIdempotentTransform(t *testing.T) {
	boxes := []image.Rectangle{
		image.Rect(0, 0, 1, 1),
		image.Rect(12, 34, 56, 78),
		image.Rect(300, 200, 640, 480),
	}

	for _, box := range boxes {
		first := Outline(box)
		if first != box {
			t.Errorf("Outline(%v) = %v, want the same corners", box, first)
		}
		if again := Outline(first); again != first {
			t.Errorf("Outline not stable: %v then %v", first, again)
		}
	}
}

func TestQualifying(t *testing.T) {
	in := []Detection{
		{Confidence: 0.9, ClassName: "car"},
		{Confidence: 0.499999, ClassName: "person"},
		{Confidence: 0.5, ClassName: "dog"},
		{Confidence: 0.1, ClassName: "cat"},
	}

	got := Qualifying(in)
	if len(got) != 2 {
		t.Fatalf("Qualifying: got %d detections, want 2", len(got))
	}
	if got[0].ClassName != "car" || got[1].ClassName != "dog" {
		t.Errorf("Qualifying kept %q and %q, want car and dog", got[0].ClassName, got[1].ClassName)
	}
}

// yoloTensor builds a [4+classes, anchors] row-major tensor.
func yoloTensor(classes int, anchors [][]float32) []float32 {
	attrs := 4 + classes
	n := len(anchors)
	data := make([]float32, attrs*n)
	for i, a := range anchors {
		for j := 0; j < attrs && j < len(a); j++ {
			data[j*n+i] = a[j]
		}
	}
	return data
}

func TestDecodeYOLOv8(t *testing.T) {
	// 3 classes, 3 anchors; model input 100x100, frame 200x100.
	data := yoloTensor(3, [][]float32{
		{50, 50, 20, 20, 0.1, 0.9, 0.2},  // class 1, strong
		{20, 20, 10, 10, 0.2, 0.1, 0.05}, // class 0, weak
		{80, 40, 10, 20, 0.0, 0.2, 0.6},  // class 2
	})

	params := DecodeParams{
		InputWidth: 100, InputHeight: 100,
		FrameWidth: 200, FrameHeight: 100,
		MinScore: 0.25,
		Classes:  3,
	}

	cands, err := DecodeYOLOv8(data, params)
	if err != nil {
		t.Fatalf("DecodeYOLOv8: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}

	first := cands[0]
	if first.ClassIndex != 1 || first.Confidence != 0.9 {
		t.Errorf("first: got class %d conf %v", first.ClassIndex, first.Confidence)
	}
	if want := image.Rect(80, 40, 120, 60); first.Box != want {
		t.Errorf("first box: got %v, want %v", first.Box, want)
	}

	if cands[1].ClassIndex != 2 {
		t.Errorf("second: got class %d, want 2", cands[1].ClassIndex)
	}
}

func TestDecodeYOLOv8_Filter(t *testing.T) {
	data := yoloTensor(3, [][]float32{
		{50, 50, 20, 20, 0.1, 0.9, 0.2},
		{80, 40, 10, 20, 0.0, 0.2, 0.6},
	})

	cands, err := DecodeYOLOv8(data, DecodeParams{
		InputWidth: 100, InputHeight: 100,
		FrameWidth: 100, FrameHeight: 100,
		MinScore: 0.25,
		Classes:  3,
		Filter:   catalog.Only(2),
	})
	if err != nil {
		t.Fatalf("DecodeYOLOv8: %v", err)
	}
	if len(cands) != 1 || cands[0].ClassIndex != 2 {
		t.Fatalf("filtered decode: got %+v, want only class 2", cands)
	}
}

func TestDecodeYOLOv8_ClipsToFrame(t *testing.T) {
	data := yoloTensor(1, [][]float32{
		{0, 0, 20, 20, 0.8},
	})

	cands, err := DecodeYOLOv8(data, DecodeParams{
		InputWidth: 100, InputHeight: 100,
		FrameWidth: 100, FrameHeight: 100,
		MinScore: 0.25,
		Classes:  1,
	})
	if err != nil {
		t.Fatalf("DecodeYOLOv8: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if want := image.Rect(0, 0, 10, 10); cands[0].Box != want {
		t.Errorf("box: got %v, want %v", cands[0].Box, want)
	}
}

func TestDecodeYOLOv8_BadShape(t *testing.T) {
	_, err := DecodeYOLOv8(make([]float32, 13), DecodeParams{
		InputWidth: 640, InputHeight: 640, Classes: 80,
	})
	if !errors.Is(err, ErrOutputShape) {
		t.Errorf("got %v, want ErrOutputShape", err)
	}

	_, err = DecodeYOLOv8(make([]float32, 84), DecodeParams{Classes: 80})
	if !errors.Is(err, ErrOutputShape) {
		t.Errorf("zero input size: got %v, want ErrOutputShape", err)
	}
}

func TestName(t *testing.T) {
	cat := catalog.Default()
	cands := []Candidate{
		{Box: image.Rect(0, 0, 5, 5), Confidence: 0.7, ClassIndex: 2},
		{Box: image.Rect(1, 1, 6, 6), Confidence: 0.6, ClassIndex: 0},
		{Box: image.Rect(2, 2, 7, 7), Confidence: 0.9, ClassIndex: 99},
		{Box: image.Rect(3, 3, 8, 8), Confidence: 0.8, ClassIndex: 3},
	}

	dets := Name(cands, []int{0, 2, 7, 3}, cat)
	if len(dets) != 3 {
		t.Fatalf("got %d detections, want 3", len(dets))
	}
	if dets[2].ClassName != "motorcycle" {
		t.Errorf("label: got %q, want model spelling motorcycle", dets[2].ClassName)
	}
	if dets[0].ClassName != "car" || dets[0].ClassIndex != 2 {
		t.Errorf("first: got %+v", dets[0])
	}
	if dets[1].ClassName != "class 99" {
		t.Errorf("unknown index name: got %q", dets[1].ClassName)
	}
	if dets[0].Confidence < 0.69 || dets[0].Confidence > 0.71 {
		t.Errorf("confidence: got %v, want ~0.7", dets[0].Confidence)
	}
}
