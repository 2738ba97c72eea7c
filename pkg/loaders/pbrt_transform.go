package loaders

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// affine is a pbrt current transformation matrix without the projective row
type affine struct {
	m [3][3]float64
	t core.Vec3
}

func identityTransform() affine {
	return affine{m: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

func translateTransform(offset core.Vec3) affine {
	a := identityTransform()
	a.t = offset
	return a
}

func scaleTransform(x, y, z float64) affine {
	return affine{m: [3][3]float64{{x, 0, 0}, {0, y, 0}, {0, 0, z}}}
}

// rotateTransform rotates by degrees around axis, counter-clockwise when looking down the axis
func rotateTransform(degrees float64, axis core.Vec3) (affine, error) {
	if axis.LengthSquared() == 0 {
		return affine{}, fmt.Errorf("%w: Rotate around a zero axis", ErrInvalidScene)
	}
	a := axis.Normalize()
	s, c := math.Sincos(degrees * math.Pi / 180)

	return affine{m: [3][3]float64{
		{a.X*a.X + (1-a.X*a.X)*c, a.X*a.Y*(1-c) - a.Z*s, a.X*a.Z*(1-c) + a.Y*s},
		{a.X*a.Y*(1-c) + a.Z*s, a.Y*a.Y + (1-a.Y*a.Y)*c, a.Y*a.Z*(1-c) - a.X*s},
		{a.X*a.Z*(1-c) - a.Y*s, a.Y*a.Z*(1-c) + a.X*s, a.Z*a.Z + (1-a.Z*a.Z)*c},
	}}, nil
}

// matrixTransform reads the 16 values of Transform and ConcatTransform. pbrt lists them
// column by column, so the translation is in values 12 to 14.
func matrixTransform(v []float64) (affine, error) {
	if len(v) != 16 {
		return affine{}, fmt.Errorf("%w: matrix needs 16 values, got %d", ErrInvalidScene, len(v))
	}
	if v[3] != 0 || v[7] != 0 || v[11] != 0 || v[15] != 1 {
		return affine{}, fmt.Errorf("%w: projective transform", ErrUnsupportedFormat)
	}

	var a affine
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.m[i][j] = v[j*4+i]
		}
	}
	a.t = core.NewVec3(v[12], v[13], v[14])
	return a, nil
}

// then returns a followed by o in object space, the order pbrt appends transforms to the CTM
func (a affine) then(o affine) affine {
	var r affine
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.m[i][j] = a.m[i][0]*o.m[0][j] + a.m[i][1]*o.m[1][j] + a.m[i][2]*o.m[2][j]
		}
	}
	r.t = a.apply(o.t)
	return r
}

// apply transforms a point
func (a affine) apply(p core.Vec3) core.Vec3 {
	return core.NewVec3(
		a.m[0][0]*p.X+a.m[0][1]*p.Y+a.m[0][2]*p.Z+a.t.X,
		a.m[1][0]*p.X+a.m[1][1]*p.Y+a.m[1][2]*p.Z+a.t.Y,
		a.m[2][0]*p.X+a.m[2][1]*p.Y+a.m[2][2]*p.Z+a.t.Z,
	)
}

func (a affine) column(j int) core.Vec3 {
	return core.NewVec3(a.m[0][j], a.m[1][j], a.m[2][j])
}

// uniformScale returns the scale factor when the linear part is a rotation times a uniform
// scale, the only transforms that keep a sphere a sphere.
func (a affine) uniformScale() (float64, bool) {
	x, y, z := a.column(0), a.column(1), a.column(2)
	s := x.Length()
	if s == 0 {
		return 0, false
	}

	const eps = 1e-9
	tol := eps * s * s
	if math.Abs(y.LengthSquared()-s*s) > tol || math.Abs(z.LengthSquared()-s*s) > tol {
		return 0, false
	}
	if math.Abs(x.Dot(y)) > tol || math.Abs(x.Dot(z)) > tol || math.Abs(y.Dot(z)) > tol {
		return 0, false
	}
	return s, true
}
