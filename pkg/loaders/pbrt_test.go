package loaders

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

const threeSpheresPBRT = `# three spheres on a ground plane
LookAt 0 1 5   0 1 0   0 1 0
Camera "perspective" "float fov" [ 30 ]
    "float lensradius" 0.05 "float focaldistance" 5
Film "rgb" "integer xresolution" [ 400 ] "integer yresolution" [ 200 ]
    "string filename" "out.exr"

WorldBegin

LightSource "infinite" "rgb L" [ 1 1 1 ]

MakeNamedMaterial "glass" "string type" "dielectric" "float eta" 1.33

AttributeBegin
  Material "diffuse" "rgb reflectance" [ 0.5 0.5 0.5 ]
  Translate 0 -1000 0
  Shape "sphere" "float radius" 1000
AttributeEnd

AttributeBegin
  Translate -2 1 0
  Material "conductor" "rgb reflectance" [ 0.7 0.6 0.5 ] "float roughness" 0.1
  Shape "sphere"
AttributeEnd

AttributeBegin
  Translate 2 0 0
  Scale 0.5 0.5 0.5
  Translate 0 2 0
  NamedMaterial "glass"
  Shape "sphere" "float radius" 2
AttributeEnd
`

func TestParsePBRT(t *testing.T) {
	s, err := ParsePBRT(strings.NewReader(threeSpheresPBRT), "three")
	if err != nil {
		t.Fatalf("ParsePBRT failed: %v", err)
	}

	cam := s.CameraConfig
	if !cam.LookFrom.Equals(core.NewVec3(0, 1, 5)) || !cam.LookAt.Equals(core.NewVec3(0, 1, 0)) {
		t.Errorf("Unexpected camera placement %+v", cam)
	}
	if cam.VFov != 30 || cam.AspectRatio != 2 {
		t.Errorf("Expected fov 30 and aspect 2, got %f and %f", cam.VFov, cam.AspectRatio)
	}
	if math.Abs(cam.Aperture-0.1) > 1e-12 || cam.FocusDistance != 5 {
		t.Errorf("Expected aperture 0.1 and focus 5, got %f and %f", cam.Aperture, cam.FocusDistance)
	}

	if len(s.Shapes) != 3 {
		t.Fatalf("Expected 3 spheres, got %d", len(s.Shapes))
	}

	expected := []struct {
		center core.Vec3
		radius float64
	}{
		{core.NewVec3(0, -1000, 0), 1000},
		{core.NewVec3(-2, 1, 0), 1},
		{core.NewVec3(2, 1, 0), 1},
	}
	for i, want := range expected {
		sphere := s.Shapes[i].(*geometry.Sphere)
		if sphere.Center.Subtract(want.center).Length() > 1e-12 || math.Abs(sphere.Radius-want.radius) > 1e-12 {
			t.Errorf("Sphere %d: expected center %v radius %f, got %v radius %f",
				i, want.center, want.radius, sphere.Center, sphere.Radius)
		}
	}

	if lam, ok := s.Shapes[0].(*geometry.Sphere).Material.(*material.Lambertian); !ok || !lam.Albedo.Equals(core.NewVec3(0.5, 0.5, 0.5)) {
		t.Errorf("Ground should be grey Lambertian, got %#v", s.Shapes[0].(*geometry.Sphere).Material)
	}
	if metal, ok := s.Shapes[1].(*geometry.Sphere).Material.(*material.Metal); !ok || metal.Fuzzness != 0.1 {
		t.Errorf("Second sphere should be metal with fuzz 0.1, got %#v", s.Shapes[1].(*geometry.Sphere).Material)
	}
	if glass, ok := s.Shapes[2].(*geometry.Sphere).Material.(*material.Dielectric); !ok || glass.RefractiveIndex != 1.33 {
		t.Errorf("Third sphere should be glass with ior 1.33, got %#v", s.Shapes[2].(*geometry.Sphere).Material)
	}
	if _, err := s.Material("glass"); err != nil {
		t.Errorf("Named material should be registered: %v", err)
	}
}

func TestParsePBRT_AttributeScope(t *testing.T) {
	input := `WorldBegin
Translate 1 0 0
AttributeBegin
  Translate 5 5 5
  Material "dielectric"
AttributeEnd
Shape "sphere" "float radius" 0.5
`
	s, err := ParsePBRT(strings.NewReader(input), "scope")
	if err != nil {
		t.Fatalf("ParsePBRT failed: %v", err)
	}
	sphere := s.Shapes[0].(*geometry.Sphere)
	if !sphere.Center.Equals(core.NewVec3(1, 0, 0)) {
		t.Errorf("Translation inside the attribute block should not leak, got %v", sphere.Center)
	}
	if _, ok := sphere.Material.(*material.Lambertian); !ok {
		t.Errorf("Material inside the attribute block should not leak, got %#v", sphere.Material)
	}
}

func TestParsePBRT_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"unsupported shape", "WorldBegin\nShape \"trianglemesh\" \"point3 P\" [ 0 0 0 1 0 0 0 1 0 ]", ErrUnsupportedFormat},
		{"unsupported material", "WorldBegin\nMaterial \"coateddiffuse\"", ErrUnsupportedFormat},
		{"shape before world", "Shape \"sphere\"", ErrInvalidScene},
		{"unbalanced attribute", "WorldBegin\nAttributeEnd", ErrInvalidScene},
		{"short LookAt", "LookAt 0 0 0 1 1 1", ErrInvalidScene},
		{"bad number", "Translate 1 x 2", ErrInvalidScene},
		{"dangling parameter", "Camera \"perspective\" \"float fov\"", ErrInvalidScene},
		{"orphan continuation", "\"float fov\" 30", ErrInvalidScene},
		{"unknown named material", "WorldBegin\nNamedMaterial \"missing\"", scene.ErrUnknownMaterial},
		{"zero radius", "WorldBegin\nShape \"sphere\" \"float radius\" 0", scene.ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePBRT(strings.NewReader(tt.input), "bad")
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestTokenizePBRT(t *testing.T) {
	got := tokenizePBRT(`Material "diffuse" "rgb reflectance" [ 0.1 0.2 0.3 ]`)
	expected := []string{"Material", `"diffuse"`, `"rgb reflectance"`, "[ 0.1 0.2 0.3 ]"}

	if len(got) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %q", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Token %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestLoad_PBRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spheres.pbrt")
	if err := os.WriteFile(path, []byte(threeSpheresPBRT), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "spheres" || s.GetPrimitiveCount() != 3 {
		t.Errorf("Expected scene 'spheres' with 3 shapes, got %q with %d", s.Name, s.GetPrimitiveCount())
	}
}

func TestParsePBRT_Transforms(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		center core.Vec3
		radius float64
	}{
		{
			"rotate then translate",
			"WorldBegin\nRotate 90 0 1 0\nTranslate 1 0 0\nShape \"sphere\"",
			core.NewVec3(0, 0, -1), 1,
		},
		{
			"translate then rotate",
			"WorldBegin\nTranslate 1 0 0\nRotate 90 0 0 1\nShape \"sphere\"",
			core.NewVec3(1, 0, 0), 1,
		},
		{
			"transform replaces the ctm",
			"WorldBegin\nTranslate 9 9 9\nTransform [ 1 0 0 0  0 1 0 0  0 0 1 0  3 4 5 1 ]\nShape \"sphere\"",
			core.NewVec3(3, 4, 5), 1,
		},
		{
			"concat transform composes",
			"WorldBegin\nTranslate 1 0 0\nConcatTransform [ 2 0 0 0  0 2 0 0  0 0 2 0  0 1 0 1 ]\nShape \"sphere\" \"float radius\" 0.5",
			core.NewVec3(1, 1, 0), 1,
		},
		{
			"identity resets",
			"WorldBegin\nTranslate 4 0 0\nScale 3 3 3\nIdentity\nShape \"sphere\"",
			core.NewVec3(0, 0, 0), 1,
		},
		{
			"rotation keeps radius",
			"WorldBegin\nScale 2 2 2\nRotate 30 1 1 0\nShape \"sphere\" \"float radius\" 0.25",
			core.NewVec3(0, 0, 0), 0.5,
		},
		{
			"transforms before world are ignored",
			"Rotate 45 0 1 0\nTranslate 0 0 5\nWorldBegin\nShape \"sphere\"",
			core.NewVec3(0, 0, 0), 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParsePBRT(strings.NewReader(tt.input), "transforms")
			if err != nil {
				t.Fatalf("ParsePBRT failed: %v", err)
			}
			sphere := s.Shapes[0].(*geometry.Sphere)
			if sphere.Center.Subtract(tt.center).Length() > 1e-9 {
				t.Errorf("Expected center %v, got %v", tt.center, sphere.Center)
			}
			if math.Abs(sphere.Radius-tt.radius) > 1e-9 {
				t.Errorf("Expected radius %f, got %f", tt.radius, sphere.Radius)
			}
		})
	}
}

func TestParsePBRT_TransformErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"non-uniform scale", "WorldBegin\nScale 1 2 1\nShape \"sphere\"", ErrUnsupportedFormat},
		{"projective matrix", "WorldBegin\nTransform [ 1 0 0 0  0 1 0 0  0 0 1 1  0 0 0 1 ]", ErrUnsupportedFormat},
		{"short matrix", "WorldBegin\nConcatTransform [ 1 0 0 ]", ErrInvalidScene},
		{"zero rotation axis", "WorldBegin\nRotate 30 0 0 0", ErrInvalidScene},
		{"short rotate", "WorldBegin\nRotate 30 0 1", ErrInvalidScene},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePBRT(strings.NewReader(tt.input), "bad"); !errors.Is(err, tt.err) {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestParsePBRT_HashInsideQuotes(t *testing.T) {
	input := `WorldBegin
MakeNamedMaterial "red#1" "string type" "diffuse" "rgb reflectance" [ 0.9 0.1 0.1 ] # trailing comment
NamedMaterial "red#1"
Shape "sphere"
`
	s, err := ParsePBRT(strings.NewReader(input), "hash")
	if err != nil {
		t.Fatalf("ParsePBRT failed: %v", err)
	}
	if _, err := s.Material("red#1"); err != nil {
		t.Errorf("Material name containing # should survive comment stripping: %v", err)
	}
	lam, ok := s.Shapes[0].(*geometry.Sphere).Material.(*material.Lambertian)
	if !ok || !lam.Albedo.Equals(core.NewVec3(0.9, 0.1, 0.1)) {
		t.Errorf("Sphere should use the named red material, got %#v", s.Shapes[0].(*geometry.Sphere).Material)
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`Shape "sphere" # comment`, `Shape "sphere" `},
		{`# whole line`, ``},
		{`NamedMaterial "a#b"`, `NamedMaterial "a#b"`},
		{`Film "rgb" "string filename" "out#2.exr" # note`, `Film "rgb" "string filename" "out#2.exr" `},
	}
	for _, tt := range tests {
		if got := stripComment(tt.in); got != tt.want {
			t.Errorf("stripComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
