package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// constSampler returns the same value for every draw
type constSampler struct {
	value float64
}

func (c constSampler) Get1D() float64 { return c.value }
func (c constSampler) Get2D() core.Vec2 {
	return core.NewVec2(c.value, c.value)
}
func (c constSampler) Get3D() core.Vec3 {
	return core.NewVec3(c.value, c.value, c.value)
}

// seqSampler replays a fixed sequence of draws
type seqSampler struct {
	values []float64
	next   int
}

func (s *seqSampler) Get1D() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
func (s *seqSampler) Get2D() core.Vec2 { return core.NewVec2(s.Get1D(), s.Get1D()) }
func (s *seqSampler) Get3D() core.Vec3 {
	return core.NewVec3(s.Get1D(), s.Get1D(), s.Get1D())
}

func TestLambertian_AlwaysScatters(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	normals := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(0, 1, 0),
		core.NewVec3(-1, 0, 0),
		core.NewVec3(1, 1, 1).Normalize(),
	}

	for _, normal := range normals {
		hit := HitRecord{
			Point:     core.NewVec3(1, 2, 3),
			Normal:    normal,
			FrontFace: true,
		}
		ray := core.NewRay(normal.Multiply(2), normal.Negate())

		for i := 0; i < 500; i++ {
			scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
			if !didScatter {
				t.Fatal("Lambertian should always scatter")
			}
			if !scatter.Attenuation.Equals(albedo) {
				t.Fatalf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
			}
			if !scatter.Scattered.Origin.Equals(hit.Point) {
				t.Fatalf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
			}
			// normal + unit vector never points below the surface
			if scatter.Scattered.Direction.Dot(normal) < -1e-12 {
				t.Fatalf("Scattered direction %v points below the surface with normal %v",
					scatter.Scattered.Direction, normal)
			}
		}
	}
}

func TestLambertian_DirectionFromUnitVector(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(1, 1, 1))
	hit := HitRecord{Normal: core.NewVec3(0, 1, 0)}

	// u1 = 0.25 -> azimuth π/2, u2 = 0.5 -> z = 0, giving the unit vector (0, 1, 0)
	sampler := &seqSampler{values: []float64{0.25, 0.5}}
	scatter, _ := lambertian.Scatter(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), hit, sampler)

	expected := core.NewVec3(0, 2, 0)
	if scatter.Scattered.Direction.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected direction %v, got %v", expected, scatter.Scattered.Direction)
	}
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{Normal: normal, FrontFace: true}

	// u2 = 0 gives z = -1, the unit vector exactly opposite the normal
	sampler := &seqSampler{values: []float64{0.3, 0.0}}
	scatter, didScatter := lambertian.Scatter(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), hit, sampler)
	if !didScatter {
		t.Fatal("Lambertian should always scatter")
	}

	if !scatter.Scattered.Direction.Equals(normal) {
		t.Errorf("Degenerate scatter should fall back to the normal, got %v", scatter.Scattered.Direction)
	}
	if math.IsNaN(scatter.Scattered.Direction.X) {
		t.Error("Scatter direction must not be NaN")
	}
}
