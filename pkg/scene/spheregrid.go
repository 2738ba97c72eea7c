package scene

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Sphere grid layout
const (
	gridSize   = 12
	gridExtent = 9.0 // side length of the square covered by the grid
)

// gridColor returns the linear RGB albedo for grid cell (i, j). Hue varies along x and
// chroma along z, at roughly constant OKLCH lightness.
func gridColor(i, j int) core.Vec3 {
	hue := float64(i) / float64(gridSize-1) * 360.0
	chroma := 0.05 + float64(j)/float64(gridSize-1)*0.20
	lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)

	r, g, b := colorful.OkLch(lightness, chroma, hue).Clamped().LinearRgb()
	return core.NewVec3(r, g, b)
}

// NewSphereGridScene creates a grid of metal spheres colored across the OKLCH hue wheel
func NewSphereGridScene() *Scene {
	s := New("grid", geometry.CameraConfig{
		LookFrom:    core.NewVec3(4.5, 6, 18),
		LookAt:      core.NewVec3(4.5, 0.8, 4.5),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.02,
	})

	ground := s.AddMaterial("ground", material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.Add(geometry.NewSphere(core.NewVec3(4.5, -1000, 4.5), 1000, ground))

	spacing := gridExtent / float64(gridSize-1)
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			center := core.NewVec3(
				float64(i)*spacing,
				radius,
				float64(j)*spacing,
			)
			roughness := 0.05 + 0.05*float64((i+j)%3)
			mat := s.AddMaterial(fmt.Sprintf("metal-%d-%d", i, j), material.NewMetal(gridColor(i, j), roughness))
			s.Add(geometry.NewSphere(center, radius, mat))
		}
	}

	return s
}
