package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Vec3 is a point or direction in a scene file
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is a linear RGB color in a scene file
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// MaterialType enumerates the supported material kinds
type MaterialType string

const (
	MaterialLambertian MaterialType = "lambertian"
	MaterialMetal      MaterialType = "metal"
	MaterialDielectric MaterialType = "dielectric"
)

// CameraSpec describes the recommended camera
type CameraSpec struct {
	Position    Vec3    `json:"position"`
	Target      Vec3    `json:"target"`
	Up          Vec3    `json:"up"`
	FOV         float64 `json:"fov"`
	AspectRatio float64 `json:"aspect_ratio"`
	Aperture    float64 `json:"aperture"`
	FocusDist   float64 `json:"focus_dist"` // 0 = distance from position to target
}

// MaterialSpec describes a named material
type MaterialSpec struct {
	ID     string       `json:"id"`
	Type   MaterialType `json:"type"`
	Albedo Color        `json:"albedo"`
	Fuzz   float64      `json:"fuzz,omitempty"` // metal only
	IOR    float64      `json:"ior,omitempty"`  // dielectric only
}

// SphereSpec describes a sphere referencing a material by id
type SphereSpec struct {
	Center   Vec3    `json:"center"`
	Radius   float64 `json:"radius"`
	Inward   bool    `json:"inward,omitempty"` // flip normals inward, used for hollow glass
	Material string  `json:"material"`
}

// SceneFile is the on-disk JSON scene layout
type SceneFile struct {
	Name      string         `json:"name"`
	Camera    CameraSpec     `json:"camera"`
	Materials []MaterialSpec `json:"materials"`
	Spheres   []SphereSpec   `json:"spheres"`
}

// LoadJSON reads a scene from a JSON file
func LoadJSON(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := DecodeJSON(f)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = sceneName(path)
	}
	return s, nil
}

// SaveJSON writes a scene to a JSON file
func SaveJSON(path string, s *scene.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	return encodeAndClose(f, s)
}

// encodeAndClose writes s to wc and closes it, reporting a failed close
func encodeAndClose(wc io.WriteCloser, s *scene.Scene) error {
	if err := EncodeJSON(wc, s); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close scene: %w", err)
	}
	return nil
}

// DecodeJSON parses a JSON scene and builds it
func DecodeJSON(r io.Reader) (*scene.Scene, error) {
	var file SceneFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return file.Build()
}

// EncodeJSON writes s as an indented JSON scene
func EncodeJSON(w io.Writer, s *scene.Scene) error {
	file, err := NewSceneFile(s)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Build converts the file description into a renderable scene
func (f *SceneFile) Build() (*scene.Scene, error) {
	s := scene.New(f.Name, f.Camera.config())

	for _, spec := range f.Materials {
		if spec.ID == "" {
			return nil, fmt.Errorf("%w: material without id", ErrInvalidScene)
		}
		if _, exists := s.Materials[spec.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidScene, spec.ID)
		}
		mat, err := spec.material()
		if err != nil {
			return nil, err
		}
		s.AddMaterial(spec.ID, mat)
	}

	for i, spec := range f.Spheres {
		mat, err := s.Material(spec.Material)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		sphere, err := s.AddSphere(spec.Center.vec(), spec.Radius, mat)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		if spec.Inward {
			sphere.Radius = -sphere.Radius
		}
	}

	return s, nil
}

// NewSceneFile describes s in the file layout. Materials not in the scene's table get generated ids.
func NewSceneFile(s *scene.Scene) (*SceneFile, error) {
	file := &SceneFile{
		Name:   s.Name,
		Camera: newCameraSpec(s.CameraConfig),
	}

	// Sorted for stable output
	names := make([]string, 0, len(s.Materials))
	for name := range s.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make(map[material.Material]string)
	addMaterial := func(id string, mat material.Material) error {
		spec, err := newMaterialSpec(id, mat)
		if err != nil {
			return err
		}
		ids[mat] = id
		file.Materials = append(file.Materials, spec)
		return nil
	}

	for _, name := range names {
		if err := addMaterial(name, s.Materials[name]); err != nil {
			return nil, err
		}
	}

	for i, shape := range s.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("%w: shape %d is a %T, only spheres can be saved", ErrUnsupportedFormat, i, shape)
		}

		id, known := ids[sphere.Material]
		if !known {
			id = fmt.Sprintf("material-%d", len(file.Materials))
			if err := addMaterial(id, sphere.Material); err != nil {
				return nil, err
			}
		}

		radius := sphere.Radius
		file.Spheres = append(file.Spheres, SphereSpec{
			Center:   newVec3(sphere.Center),
			Radius:   max(radius, -radius),
			Inward:   radius < 0,
			Material: id,
		})
	}

	return file, nil
}

func (spec MaterialSpec) material() (material.Material, error) {
	albedo := core.NewVec3(spec.Albedo.R, spec.Albedo.G, spec.Albedo.B)
	switch spec.Type {
	case MaterialLambertian:
		return material.NewLambertian(albedo), nil
	case MaterialMetal:
		return material.NewMetal(albedo, spec.Fuzz), nil
	case MaterialDielectric:
		if spec.IOR <= 0 {
			return nil, fmt.Errorf("%w: material %q needs a positive ior, got %v", ErrInvalidScene, spec.ID, spec.IOR)
		}
		return material.NewDielectric(spec.IOR), nil
	default:
		return nil, fmt.Errorf("%w: material %q has unknown type %q", ErrInvalidScene, spec.ID, spec.Type)
	}
}

func newMaterialSpec(id string, mat material.Material) (MaterialSpec, error) {
	switch m := mat.(type) {
	case *material.Lambertian:
		return MaterialSpec{ID: id, Type: MaterialLambertian, Albedo: newColor(m.Albedo)}, nil
	case *material.Metal:
		return MaterialSpec{ID: id, Type: MaterialMetal, Albedo: newColor(m.Albedo), Fuzz: m.Fuzzness}, nil
	case *material.Dielectric:
		return MaterialSpec{ID: id, Type: MaterialDielectric, IOR: m.RefractiveIndex}, nil
	default:
		return MaterialSpec{}, fmt.Errorf("%w: material %q is a %T", ErrUnsupportedFormat, id, mat)
	}
}

func (c CameraSpec) config() geometry.CameraConfig {
	config := geometry.CameraConfig{
		LookFrom:      c.Position.vec(),
		LookAt:        c.Target.vec(),
		Up:            c.Up.vec(),
		VFov:          c.FOV,
		AspectRatio:   c.AspectRatio,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDist,
	}
	if config.Up.Equals(core.Vec3{}) {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.VFov <= 0 {
		config.VFov = 40
	}
	if config.AspectRatio <= 0 {
		config.AspectRatio = 16.0 / 9.0
	}
	return config
}

func newCameraSpec(config geometry.CameraConfig) CameraSpec {
	return CameraSpec{
		Position:    newVec3(config.LookFrom),
		Target:      newVec3(config.LookAt),
		Up:          newVec3(config.Up),
		FOV:         config.VFov,
		AspectRatio: config.AspectRatio,
		Aperture:    config.Aperture,
		FocusDist:   config.FocusDistance,
	}
}

func (v Vec3) vec() core.Vec3 { return core.NewVec3(v.X, v.Y, v.Z) }

func newVec3(v core.Vec3) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func newColor(v core.Vec3) Color { return Color{R: v.X, G: v.Y, B: v.Z} }
