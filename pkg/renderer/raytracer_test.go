package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func smallConfig(width, height int) Config {
	config := DefaultConfig()
	config.Width = width
	config.Height = height
	config.SamplesPerPixel = 2
	config.MaxDepth = 5
	return config
}

func renderScene(t *testing.T, s *scene.Scene, config Config) *Frame {
	t.Helper()
	rt, err := NewRaytracer(s, geometry.NewCamera(s.CameraConfig), config, nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	frame, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if stats.RowsRendered != config.Height {
		t.Fatalf("Expected %d rows rendered, got %d", config.Height, stats.RowsRendered)
	}
	return frame
}

func TestRender_SinglePixelMatchesManualTrace(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.6, 0.7)
	world := scene.New("ground", geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 10, 0),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 0, -1),
		VFov:        30,
		AspectRatio: 1,
	})
	if _, err := world.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(albedo)); err != nil {
		t.Fatalf("AddSphere failed: %v", err)
	}
	camera := geometry.NewCamera(world.CameraConfig)

	config := Config{Width: 1, Height: 1, SamplesPerPixel: 1, MaxDepth: 2, Seed: 1234, NumWorkers: 1}
	rt, err := NewRaytracer(world, camera, config, nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	frame, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Replay the single sample with the same random stream
	sampler := core.NewStreamSampler(1234, 0)
	s := sampler.Get1D()
	tt := sampler.Get1D()
	ray := camera.GetRay(s, tt, sampler)

	hit, ok := world.Hit(ray, integrator.ShadowAcneEpsilon, math.Inf(1))
	if !ok {
		t.Fatal("Camera ray pointing at the ground should hit it")
	}
	scatter, ok := hit.Material.Scatter(ray, *hit, sampler)
	if !ok {
		t.Fatal("Lambertian should always scatter")
	}
	if _, again := world.Hit(scatter.Scattered, integrator.ShadowAcneEpsilon, math.Inf(1)); again {
		t.Fatal("Ray scattered off the top of the ground sphere should escape")
	}

	expected := QuantizeColor(scatter.Attenuation.MultiplyVec(integrator.BackgroundGradient(scatter.Scattered)))
	if got := frame.At(0, 0); got != expected {
		t.Errorf("Expected pixel %+v, got %+v", expected, got)
	}

	// The ground tints the sky, so no channel can exceed albedo times white
	maxR := QuantizeColor(albedo).R
	if got := frame.At(0, 0); got.R > maxR {
		t.Errorf("Red channel %d exceeds albedo bound %d", got.R, maxR)
	}
}

func TestRender_EmptySceneShowsSkyGradient(t *testing.T) {
	world := scene.New("empty", geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})
	config := smallConfig(8, 4)
	config.SamplesPerPixel = 4
	frame := renderScene(t, world, config)

	horizonR := QuantizeColor(core.NewVec3(0.75, 0.85, 1.0)).R
	for x := 0; x < frame.Width; x++ {
		top := frame.At(x, 0)
		bottom := frame.At(x, frame.Height-1)
		if top.R >= horizonR {
			t.Errorf("Top pixel %d should be bluer than the horizon, got %+v", x, top)
		}
		if bottom.R <= horizonR {
			t.Errorf("Bottom pixel %d should be whiter than the horizon, got %+v", x, bottom)
		}
		if top.B != 255 || bottom.B != 255 {
			t.Errorf("Blue channel should be saturated across the sky, got top %+v bottom %+v", top, bottom)
		}
	}
}

func TestRender_OriginFlipsRows(t *testing.T) {
	world := scene.NewDefaultScene()
	topLeft := smallConfig(12, 7)
	bottomLeft := topLeft
	bottomLeft.Origin = OriginBottomLeft

	a := renderScene(t, world, topLeft)
	b := renderScene(t, world, bottomLeft)

	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.At(x, y) != b.At(x, a.Height-1-y) {
				t.Fatalf("Pixel (%d,%d) differs between origins", x, y)
			}
		}
	}

	// Both origins produce the same upright image
	if string(a.RGBA().Pix) != string(b.RGBA().Pix) {
		t.Error("RGBA conversion should not depend on storage origin")
	}
}

func TestRender_Deterministic(t *testing.T) {
	world := scene.NewDefaultScene()
	config := smallConfig(16, 9)

	first := renderScene(t, world, config)
	second := renderScene(t, world, config)
	if !pixelsEqual(first, second) {
		t.Error("Rendering twice with the same seed should be byte-identical")
	}

	config.Seed++
	third := renderScene(t, world, config)
	if pixelsEqual(first, third) {
		t.Error("A different seed should change the noise pattern")
	}
}

func TestRender_IndependentOfWorkerCount(t *testing.T) {
	world := scene.NewDefaultScene()
	config := smallConfig(16, 9)

	config.NumWorkers = 1
	reference := renderScene(t, world, config)

	for _, workers := range []int{2, 3, 8} {
		config.NumWorkers = workers
		if got := renderScene(t, world, config); !pixelsEqual(reference, got) {
			t.Errorf("Render with %d workers differs from single worker render", workers)
		}
	}
}

func TestRender_Cancelled(t *testing.T) {
	world := scene.NewDefaultScene()
	rt, err := NewRaytracer(world, geometry.NewCamera(world.CameraConfig), smallConfig(16, 9), nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, stats, err := rt.Render(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the context error to be wrapped, got %v", err)
	}
	if frame == nil || len(frame.Pix) != 16*9 {
		t.Fatal("A cancelled render should still return a full-size frame")
	}
	if stats.RowsRendered != 0 {
		t.Errorf("No rows should render after cancellation, got %d", stats.RowsRendered)
	}
}

func TestRender_Stats(t *testing.T) {
	world := scene.NewDefaultScene()
	config := smallConfig(10, 6)
	config.NumWorkers = 3

	rt, err := NewRaytracer(world, geometry.NewCamera(world.CameraConfig), config, nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	_, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if stats.TotalPixels != 60 {
		t.Errorf("Expected 60 pixels, got %d", stats.TotalPixels)
	}
	if stats.TotalSamples != 60*config.SamplesPerPixel {
		t.Errorf("Expected %d samples, got %d", 60*config.SamplesPerPixel, stats.TotalSamples)
	}
	if len(stats.Workers) != 3 {
		t.Fatalf("Expected 3 worker entries, got %d", len(stats.Workers))
	}

	rows, samples := 0, 0
	for _, w := range stats.Workers {
		rows += w.Rows
		samples += w.Samples
	}
	if rows != config.Height || samples != stats.TotalSamples {
		t.Errorf("Worker totals (%d rows, %d samples) do not add up", rows, samples)
	}
}

func TestNewRaytracer_InvalidConfig(t *testing.T) {
	world := scene.NewDefaultScene()
	config := DefaultConfig()
	config.SamplesPerPixel = 0

	if _, err := NewRaytracer(world, geometry.NewCamera(world.CameraConfig), config, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

// flatIntegrator returns a constant color when called with the expected bounce budget
type flatIntegrator struct {
	color core.Vec3
	depth int
}

func (f flatIntegrator) RayColor(ray core.Ray, world integrator.World, sampler core.Sampler, depth int) core.Vec3 {
	if depth != f.depth {
		return core.Vec3{}
	}
	return f.color
}

func TestRender_CustomIntegrator(t *testing.T) {
	world := scene.NewDefaultScene()
	config := smallConfig(4, 3)
	rt, err := NewRaytracer(world, geometry.NewCamera(world.CameraConfig), config, nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	rt.SetIntegrator(flatIntegrator{color: core.NewVec3(0.25, 0.25, 0.25), depth: config.MaxDepth})

	frame, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// sqrt(0.25) = 0.5 quantizes to 127 in every channel
	expected := Pixel{R: 127, G: 127, B: 127}
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if got := frame.At(x, y); got != expected {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, expected, got)
			}
		}
	}
}

func pixelsEqual(a, b *Frame) bool {
	if len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}
