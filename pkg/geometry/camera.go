package geometry

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to construct a camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction hint
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 = pinhole
	FocusDistance float64   // Distance to the plane of perfect focus, 0 = auto
}

// Camera is a thin-lens camera. It is immutable after construction and safe for concurrent use.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
	config          CameraConfig
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	aperture := math.Max(config.Aperture, 0)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	theta := config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal camera basis
	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	config.Aperture = aperture
	config.FocusDistance = focusDistance

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      aperture / 2,
		config:          config,
	}
}

// GetRay generates a ray for normalized image-plane coordinates (s, t) in [0,1]².
// (0,0) is the lower-left corner of the viewport. The lens is only sampled when the aperture is open.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))

	return core.NewRay(origin, target.Subtract(origin))
}

// Config returns the effective configuration after clamping and focus resolution
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Forward returns the unit direction the camera is looking along
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}
