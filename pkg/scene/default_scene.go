package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewDefaultScene creates a small scene with one sphere of each material and a hollow glass sphere
func NewDefaultScene() *Scene {
	s := New("default", geometry.CameraConfig{
		LookFrom:      core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:        core.NewVec3(0, 0.5, -1), // Look at the sphere center
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.05,
		FocusDistance: 0.0, // Auto-calculate focus distance
	})

	ground := s.AddMaterial("ground", material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6)))
	blue := s.AddMaterial("blue", material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	red := s.AddMaterial("red", material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2)))
	silver := s.AddMaterial("silver", material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0))
	gold := s.AddMaterial("gold", material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3))
	glass := s.AddMaterial("glass", material.NewDielectric(1.5))

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -1000, -1), 1000, ground),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),

		// Hollow glass sphere with blue sphere inside
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, blue),
	)

	return s
}
