package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/preview"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/urfave/cli"
)

// RenderFrame renders a still frame and writes it as a PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := createScene(ctx.String("scene"), ctx.Int64("seed"), ctx.String("scenes-dir"))
	if err != nil {
		return err
	}

	config := renderer.Config{
		Width:           ctx.Int("width"),
		Height:          ctx.Int("height"),
		SamplesPerPixel: ctx.Int("spp"),
		MaxDepth:        ctx.Int("depth"),
		Seed:            ctx.Int64("seed"),
		NumWorkers:      ctx.Int("workers"),
		Origin:          renderer.OriginTopLeft,
	}
	if ctx.Bool("bottom-up") {
		config.Origin = renderer.OriginBottomLeft
	}
	if config.Height == 0 && s.CameraConfig.AspectRatio > 0 {
		config.Height = max(int(float64(config.Width)/s.CameraConfig.AspectRatio), 1)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	// The image shape wins over the scene's recommendation
	cameraConfig := s.CameraConfig
	cameraConfig.AspectRatio = float64(config.Width) / float64(config.Height)
	camera := geometry.NewCamera(cameraConfig)

	rt, err := renderer.NewRaytracer(s, camera, config, logger)
	if err != nil {
		return err
	}

	if path := ctx.String("save-scene"); path != "" {
		if err := loaders.SaveJSON(path, s); err != nil {
			return err
		}
		logger.Noticef("scene written to %s", path)
	}

	logger.Noticef("rendering scene %q (%d spheres) at %dx%d, %d spp",
		s.Name, s.GetPrimitiveCount(), config.Width, config.Height, config.SamplesPerPixel)

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frame, stats, renderErr := rt.Render(renderCtx)
	if renderErr != nil && !errors.Is(renderErr, renderer.ErrInterrupted) {
		return renderErr
	}
	displayFrameStats(stats)

	out := ctx.String("out")
	if out == "" {
		out = filepath.Join("output", s.Name, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if err := writePNG(out, frame); err != nil {
		return err
	}
	logger.Noticef("frame written to %s", out)

	// A partial frame is still saved before reporting the interruption
	if renderErr != nil {
		return renderErr
	}

	if ctx.Bool("preview") {
		return preview.Show(context.Background(), frame)
	}
	return nil
}

func writePNG(path string, frame *renderer.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return encodePNG(f, frame)
}

// encodePNG writes frame to wc and closes it, reporting a failed close
func encodePNG(wc io.WriteCloser, frame *renderer.Frame) error {
	if err := png.Encode(wc, frame.RGBA()); err != nil {
		wc.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	return nil
}

func displayFrameStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	stats.WriteTable(&buf)
	logger.Noticef("frame statistics (%.0f samples/s)\n%s", stats.SamplesPerSecond(), buf.String())
}
