package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// Image draws a rendered frame using upper half blocks, two image rows per terminal row.
// Frames larger than the drawing area are downsampled with nearest neighbour; smaller
// frames are drawn at their native size.
type Image struct {
	img *image.RGBA
}

var _ uv.Drawable = (*Image)(nil)

// NewImage prepares frame for drawing
func NewImage(frame *renderer.Frame) *Image {
	return &Image{img: frame.RGBA()}
}

// Size returns the number of cells the image occupies inside area
func (im *Image) Size(area uv.Rectangle) (cols, rows int) {
	scale := im.scale(area)
	bounds := im.img.Bounds()
	w := int(float64(bounds.Dx()) / scale)
	h := int(float64(bounds.Dy()) / scale)
	return w, (h + 1) / 2
}

func (im *Image) scale(area uv.Rectangle) float64 {
	bounds := im.img.Bounds()
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return math.Inf(1)
	}
	s := math.Max(
		float64(bounds.Dx())/float64(area.Dx()),
		float64(bounds.Dy())/float64(2*area.Dy()),
	)
	return math.Max(s, 1)
}

// Draw implements uv.Drawable
func (im *Image) Draw(scr uv.Screen, area uv.Rectangle) {
	scale := im.scale(area)
	cols, rows := im.Size(area)
	pixelRows := int(float64(im.img.Bounds().Dy()) / scale)

	for row := 0; row < rows; row++ {
		topY := row * 2
		botY := topY + 1

		for col := 0; col < cols; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: im.sample(col, topY, scale),
				},
			}
			if botY < pixelRows {
				cell.Style.Bg = im.sample(col, botY, scale)
			}
			scr.SetCell(area.Min.X+col, area.Min.Y+row, cell)
		}
	}
}

func (im *Image) sample(x, y int, scale float64) color.Color {
	return im.img.RGBAAt(int(float64(x)*scale), int(float64(y)*scale))
}

// Show displays frame in the terminal's alternate screen until a key is pressed or ctx is done
func Show(ctx context.Context, frame *renderer.Frame) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer term.Shutdown(context.Background())

	term.EnterAltScreen()
	term.HideCursor()
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Display()
	}()

	img := NewImage(frame)
	redraw := func(w, h int) error {
		if err := term.Resize(w, h); err != nil {
			return fmt.Errorf("resize terminal: %w", err)
		}
		term.Clear()
		img.Draw(term, uv.Rect(0, 0, w, h))
		return term.Display()
	}

	if err := redraw(width, height); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-term.Events():
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				if err := redraw(ev.Width, ev.Height); err != nil {
					return err
				}
			case uv.KeyPressEvent:
				return nil
			}
		}
	}
}
