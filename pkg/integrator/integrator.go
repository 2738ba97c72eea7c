package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// World is the read-only intersection query the integrator needs from a scene
type World interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the linear color carried back along ray with the given bounce budget
	RayColor(ray core.Ray, world World, sampler core.Sampler, depth int) core.Vec3
}
