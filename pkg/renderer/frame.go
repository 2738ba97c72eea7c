package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Pixel is a quantized 8-bit RGB color
type Pixel struct {
	R, G, B uint8
}

// Frame is a rendered image. Pix holds Height rows of Width pixels, ordered by Origin.
type Frame struct {
	Width  int
	Height int
	Origin Origin
	Pix    []Pixel
}

// NewFrame allocates a black frame
func NewFrame(width, height int, origin Origin) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Origin: origin,
		Pix:    make([]Pixel, width*height),
	}
}

// At returns the pixel at column x of stored row y
func (f *Frame) At(x, y int) Pixel {
	return f.Pix[y*f.Width+x]
}

// scanRow returns the storage slice for scan row j, where j=0 is the bottom of the image
func (f *Frame) scanRow(j int) []Pixel {
	y := j
	if f.Origin == OriginTopLeft {
		y = f.Height - 1 - j
	}
	return f.Pix[y*f.Width : (y+1)*f.Width]
}

// RGBA converts the frame to an upright image regardless of storage order
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for j := 0; j < f.Height; j++ {
		row := f.scanRow(j)
		for i, p := range row {
			img.SetRGBA(i, f.Height-1-j, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}

// QuantizeColor applies gamma 2, clamps to [0,1] and scales to 8 bits
func QuantizeColor(c core.Vec3) Pixel {
	return Pixel{R: quantize(c.X), G: quantize(c.Y), B: quantize(c.Z)}
}

func quantize(x float64) uint8 {
	// Negative and NaN components map to black
	if !(x > 0) {
		return 0
	}
	return uint8(255.999 * math.Min(math.Sqrt(x), 1))
}
