package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// Raytracer renders a world through a camera into a Frame
type Raytracer struct {
	world      integrator.World
	camera     *geometry.Camera
	integrator integrator.Integrator
	config     Config
	logger     core.Logger

	// Denominators for the normalized image coordinates
	uScale, vScale float64
}

// NewRaytracer creates a raytracer using unidirectional path tracing
func NewRaytracer(world integrator.World, camera *geometry.Camera, config Config, logger core.Logger) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{
		world:      world,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(),
		config:     config,
		logger:     logger,
		uScale:     float64(max(config.Width-1, 1)),
		vScale:     float64(max(config.Height-1, 1)),
	}, nil
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integ integrator.Integrator) {
	rt.integrator = integ
}

// Config returns the render configuration
func (rt *Raytracer) Config() Config {
	return rt.config
}

// RenderRow renders scan row j (0 = bottom) into row and returns the number of camera rays traced.
// Per sample the sampler is consumed in the order: u jitter, v jitter, lens, then the integrator.
func (rt *Raytracer) RenderRow(j int, sampler core.Sampler, row []Pixel) int {
	spp := rt.config.SamplesPerPixel
	for i := 0; i < rt.config.Width; i++ {
		var colorAccum core.Vec3
		for sample := 0; sample < spp; sample++ {
			s := (float64(i) + sampler.Get1D()) / rt.uScale
			t := (float64(j) + sampler.Get1D()) / rt.vScale

			ray := rt.camera.GetRay(s, t, sampler)
			colorAccum = colorAccum.Add(rt.integrator.RayColor(ray, rt.world, sampler, rt.config.MaxDepth))
		}
		row[i] = QuantizeColor(colorAccum.Multiply(1.0 / float64(spp)))
	}
	return rt.config.Width * spp
}

// Render renders the whole frame. When ctx is cancelled the partially rendered frame is
// returned together with ErrInterrupted; rows that were not reached stay black.
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	frame := NewFrame(rt.config.Width, rt.config.Height, rt.config.Origin)
	pool := NewWorkerPool(rt, frame, rt.config.NumWorkers)

	stats := RenderStats{
		Width:       rt.config.Width,
		Height:      rt.config.Height,
		TotalPixels: rt.config.Width * rt.config.Height,
		Workers:     make([]WorkerStats, pool.GetNumWorkers()),
	}
	for i := range stats.Workers {
		stats.Workers[i].ID = i
	}

	rt.logger.Debugf("rendering %dx%d, %d spp, max depth %d, %d workers",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, rt.config.MaxDepth, pool.GetNumWorkers())

	startTime := time.Now()
	pool.Start(ctx)

	// Rows are queued top of the image first, matching the traditional scan order
	for j := rt.config.Height - 1; j >= 0; j-- {
		pool.SubmitTask(RowTask{Row: j})
	}
	go pool.Stop()

	progress := NewProgress(rt.config.Height, rt.logger)
	for result := range pool.Results() {
		stats.addRow(result)
		progress.Observe(stats.RowsRendered, time.Since(startTime))
	}
	stats.RenderTime = time.Since(startTime)

	if stats.RowsRendered < rt.config.Height {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		return frame, stats, fmt.Errorf("%w after %d/%d rows: %w", ErrInterrupted, stats.RowsRendered, rt.config.Height, err)
	}

	return frame, stats, nil
}
