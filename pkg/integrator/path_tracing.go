package integrator

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ShadowAcneEpsilon is the lower t bound for scene queries. It keeps a scattered ray
// from re-intersecting the surface it just left.
const ShadowAcneEpsilon = 0.001

var (
	// SkyBottom is the background color for rays pointing straight down
	SkyBottom = core.NewVec3(1.0, 1.0, 1.0)
	// SkyTop is the background color for rays pointing straight up
	SkyTop = core.NewVec3(0.5, 0.7, 1.0)
)

// PathTracingIntegrator implements recursive unidirectional path tracing
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a single ray using unidirectional path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return BackgroundGradient(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(
		pt.RayColor(scatter.Scattered, world, sampler, depth-1))
}

// BackgroundGradient returns the sky color seen along a ray that escapes the scene
func BackgroundGradient(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return SkyBottom.Multiply(1.0 - t).Add(SkyTop.Multiply(t))
}
