package core

import (
	"math"
	"math/rand"
)

// Vec2 holds a pair of sample values or 2D coordinates
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; every goroutine needs its own instance.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewStreamSampler creates the sampler for one independent stream derived from a master seed.
// The same (seed, stream) pair always yields the same sequence.
func NewStreamSampler(seed int64, stream int) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(StreamSeed(seed, stream))))
}

// StreamSeed mixes a master seed and a stream index with splitmix64
func StreamSeed(seed int64, stream int) int64 {
	z := uint64(seed) + uint64(stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z)
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// RandomUnitVector returns a direction uniformly distributed on the unit sphere.
// The azimuth is uniform in [0, 2π) and z = -1 + 2u.
func RandomUnitVector(sampler Sampler) Vec3 {
	u := sampler.Get2D()
	a := 2.0 * math.Pi * u.X
	z := -1 + 2*u.Y
	r := math.Sqrt(1 - z*z)
	return NewVec3(r*math.Cos(a), r*math.Sin(a), z)
}

// RandomInUnitSphere returns a point strictly inside the unit sphere (rejection sampling)
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		p := RandomVec3Range(sampler, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomInUnitDisk returns a point strictly inside the unit disk on the z=0 plane (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		u := sampler.Get2D()
		x := 2.0*u.X - 1.0
		y := 2.0*u.Y - 1.0
		if x*x+y*y < 1.0 {
			return NewVec3(x, y, 0)
		}
	}
}
