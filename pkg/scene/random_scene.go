package scene

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewRandomScene creates the classic "many spheres" scene: a huge ground sphere,
// a 22x22 grid of small randomized spheres and three large feature spheres.
// The layout is fully determined by seed.
func NewRandomScene(seed int64) *Scene {
	s := New("random", geometry.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.0,
		FocusDistance: 10.0,
	})
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))

	ground := s.AddMaterial("ground", material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground))

	glass := s.AddMaterial("glass", material.NewDielectric(1.5))

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float64(a)+0.9*sampler.Get1D(), 0.2, float64(b)+0.9*sampler.Get1D())

			// Keep clear of the large metal sphere
			if center.Subtract(core.NewVec3(4, 0.2, 0)).Length() <= 0.9 {
				continue
			}

			var sphereMat material.Material
			name := fmt.Sprintf("sphere_%d_%d", a+11, b+11)
			switch {
			case chooseMat < 0.8:
				// diffuse
				albedo := core.RandomVec3(sampler).MultiplyVec(core.RandomVec3(sampler))
				sphereMat = s.AddMaterial(name, material.NewLambertian(albedo))
			case chooseMat < 0.95:
				// metal
				albedo := core.RandomVec3Range(sampler, 0.5, 1.0)
				fuzz := sampler.Get1D() * 0.5
				sphereMat = s.AddMaterial(name, material.NewMetal(albedo, fuzz))
			default:
				sphereMat = glass
			}
			s.Add(geometry.NewSphere(center, 0.2, sphereMat))
		}
	}

	s.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, glass))
	s.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0,
		s.AddMaterial("brown", material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))))
	s.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0,
		s.AddMaterial("mirror", material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))))

	return s
}
