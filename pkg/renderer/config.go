package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a render configuration fails validation
	ErrInvalidConfig = errors.New("invalid render config")
	// ErrInterrupted is returned when a render is cancelled before every row is finished
	ErrInterrupted = errors.New("render interrupted")
)

// Origin selects which image row is stored first in a Frame
type Origin int

const (
	// OriginTopLeft stores the top scanline first, as image files expect
	OriginTopLeft Origin = iota
	// OriginBottomLeft stores rows in scan order, bottom scanline first
	OriginBottomLeft
)

func (o Origin) String() string {
	switch o {
	case OriginTopLeft:
		return "top-left"
	case OriginBottomLeft:
		return "bottom-left"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Config contains everything the raytracer needs besides the scene and camera
type Config struct {
	Width           int    // Image width in pixels
	Height          int    // Image height in pixels
	SamplesPerPixel int    // Number of rays per pixel
	MaxDepth        int    // Maximum ray bounce depth
	Seed            int64  // Base seed for the per-row random streams
	NumWorkers      int    // Number of parallel workers (0 = auto-detect)
	Origin          Origin // Row order of the output frame
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           600,
		Height:          400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
		NumWorkers:      0,
		Origin:          OriginTopLeft,
	}
}

// Validate checks the configuration for values that cannot produce an image
func (c Config) Validate() error {
	if c.Width < 1 {
		return fmt.Errorf("%w: width must be at least 1, got %d", ErrInvalidConfig, c.Width)
	}
	if c.Height < 1 {
		return fmt.Errorf("%w: height must be at least 1, got %d", ErrInvalidConfig, c.Height)
	}
	if c.SamplesPerPixel < 1 {
		return fmt.Errorf("%w: samples per pixel must be at least 1, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be at least 1, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("%w: worker count cannot be negative, got %d", ErrInvalidConfig, c.NumWorkers)
	}
	if c.Origin != OriginTopLeft && c.Origin != OriginBottomLeft {
		return fmt.Errorf("%w: unknown origin %v", ErrInvalidConfig, c.Origin)
	}
	return nil
}
