package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

var (
	ErrInvalidRadius   = errors.New("scene: sphere radius must be a positive finite number")
	ErrUnknownMaterial = errors.New("scene: unknown material")
)

// Scene contains all the elements needed for rendering.
// It must not be mutated while a render is in progress.
type Scene struct {
	Name         string
	Shapes       []geometry.Shape             // Objects in the scene, order is irrelevant
	Materials    map[string]material.Material // Material table shared by the shapes
	CameraConfig geometry.CameraConfig        // Recommended camera
}

// New creates an empty scene with the given recommended camera
func New(name string, cameraConfig geometry.CameraConfig) *Scene {
	return &Scene{
		Name:         name,
		Shapes:       make([]geometry.Shape, 0),
		Materials:    make(map[string]material.Material),
		CameraConfig: cameraConfig,
	}
}

// AddMaterial registers a named material in the scene's material table
func (s *Scene) AddMaterial(name string, mat material.Material) material.Material {
	if s.Materials == nil {
		s.Materials = make(map[string]material.Material)
	}
	s.Materials[name] = mat
	return mat
}

// Material looks up a material by name
func (s *Scene) Material(name string) (material.Material, error) {
	mat, ok := s.Materials[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return mat, nil
}

// AddSphere validates and adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) (*geometry.Sphere, error) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	sphere := geometry.NewSphere(center, radius, mat)
	s.Shapes = append(s.Shapes, sphere)
	return sphere, nil
}

// Add appends shapes without validation (hollow shells use negative radii on purpose)
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// Hit returns the nearest intersection in [tMin, tMax] over all shapes.
// This is a brute-force linear scan; the upper bound shrinks to each hit found.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range s.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// GetPrimitiveCount returns the number of primitives in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}
