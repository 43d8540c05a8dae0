package vision

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageFrame is a Frame backed by an in-memory RGBA image.
// Labels use the fixed 7x13 bitmap face regardless of scale.
type ImageFrame struct {
	img *image.RGBA
}

// NewImageFrame creates a frame of the given size filled with bg.
func NewImageFrame(width, height int, bg color.Color) *ImageFrame {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return &ImageFrame{img: img}
}

// WrapImage annotates an existing RGBA image in place.
func WrapImage(img *image.RGBA) *ImageFrame {
	return &ImageFrame{img: img}
}

// Image returns the underlying image.
func (f *ImageFrame) Image() *image.RGBA {
	return f.img
}

// Bounds returns the image bounds.
func (f *ImageFrame) Bounds() image.Rectangle {
	return f.img.Bounds()
}

// DrawRect draws the outline of r, growing outward by thickness-1 pixels.
func (f *ImageFrame) DrawRect(r image.Rectangle, c color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	for t := 0; t < thickness; t++ {
		o := r.Inset(-t)
		for x := o.Min.X; x <= o.Max.X; x++ {
			f.img.SetRGBA(x, o.Min.Y, c)
			f.img.SetRGBA(x, o.Max.Y, c)
		}
		for y := o.Min.Y; y <= o.Max.Y; y++ {
			f.img.SetRGBA(o.Min.X, y, c)
			f.img.SetRGBA(o.Max.X, y, c)
		}
	}
}

// DrawLabel writes text with its baseline starting at origin.
// Thickness is approximated by redrawing shifted one pixel right.
func (f *ImageFrame) DrawLabel(text string, origin image.Point, c color.RGBA, _ float64, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	d := &font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	for t := 0; t < thickness; t++ {
		d.Dot = fixed.P(origin.X+t, origin.Y)
		d.DrawString(text)
	}
}
