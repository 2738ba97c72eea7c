package loaders

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
	"github.com/qmuntal/gltf"
)

// metallicThreshold splits glTF materials into metal and diffuse
const metallicThreshold = 0.5

// defaultGLTFMaterial is used for meshes without a material
const defaultGLTFMaterial = "default"

// LoadGLTF imports a glTF or GLB file. Every node that references a mesh becomes a sphere
// centered at the node's world translation with radius equal to its world x scale.
func LoadGLTF(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return FromGLTF(doc, sceneName(path))
}

// FromGLTF converts a parsed glTF document into a sphere scene
func FromGLTF(doc *gltf.Document, name string) (*scene.Scene, error) {
	s := scene.New(name, geometry.CameraConfig{})

	materials := make([]material.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		id := m.Name
		if id == "" {
			id = fmt.Sprintf("material-%d", i)
		}
		if _, exists := s.Materials[id]; exists {
			id = fmt.Sprintf("%s-%d", id, i)
		}
		materials[i] = s.AddMaterial(id, convertGLTFMaterial(m))
	}

	// Roots are nodes that no other node lists as a child
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) {
				return nil, fmt.Errorf("%w: node %q has out of range child %d", ErrInvalidScene, n.Name, c)
			}
			isChild[c] = true
		}
	}

	visited := make([]bool, len(doc.Nodes))
	var visit func(idx int, offset core.Vec3, scale float64) error
	visit = func(idx int, offset core.Vec3, scale float64) error {
		if visited[idx] {
			return fmt.Errorf("%w: node %d is reachable twice", ErrInvalidScene, idx)
		}
		visited[idx] = true

		node := doc.Nodes[idx]
		nodeScale := node.Scale
		if nodeScale == [3]float64{} {
			nodeScale = [3]float64{1, 1, 1}
		}
		translation := core.NewVec3(node.Translation[0], node.Translation[1], node.Translation[2])

		// Rotation is ignored; spheres are rotation invariant and children keep the parent's axes
		worldOffset := offset.Add(translation.Multiply(scale))
		worldScale := scale * nodeScale[0]

		if node.Mesh != nil {
			if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
				return fmt.Errorf("%w: node %q references missing mesh %d", ErrInvalidScene, node.Name, *node.Mesh)
			}
			mat, err := meshMaterial(s, doc.Meshes[*node.Mesh], materials)
			if err != nil {
				return fmt.Errorf("node %q: %w", node.Name, err)
			}
			if _, err := s.AddSphere(worldOffset, math.Abs(worldScale), mat); err != nil {
				return fmt.Errorf("node %q: %w", node.Name, err)
			}
		}

		for _, c := range node.Children {
			if err := visit(c, worldOffset, worldScale); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range doc.Nodes {
		if !isChild[i] {
			if err := visit(i, core.Vec3{}, 1); err != nil {
				return nil, err
			}
		}
	}

	s.CameraConfig = framingCamera(s)
	return s, nil
}

// meshMaterial returns the material of the first primitive that has one
func meshMaterial(s *scene.Scene, mesh *gltf.Mesh, materials []material.Material) (material.Material, error) {
	for _, prim := range mesh.Primitives {
		if prim.Material == nil {
			continue
		}
		if *prim.Material < 0 || *prim.Material >= len(materials) {
			return nil, fmt.Errorf("%w: mesh %q references missing material %d", ErrInvalidScene, mesh.Name, *prim.Material)
		}
		return materials[*prim.Material], nil
	}

	if mat, err := s.Material(defaultGLTFMaterial); err == nil {
		return mat, nil
	}
	return s.AddMaterial(defaultGLTFMaterial, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))), nil
}

// convertGLTFMaterial maps a PBR metallic-roughness material onto the three sphere materials.
// Blended alpha or an "ior" extra gives glass, metallic at or above the threshold gives metal
// with fuzz equal to roughness, and everything else is diffuse.
func convertGLTFMaterial(m *gltf.Material) material.Material {
	// glTF defaults
	baseColor := [4]float64{1, 1, 1, 1}
	metallic, roughness := 1.0, 1.0
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			baseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}
	albedo := core.NewVec3(baseColor[0], baseColor[1], baseColor[2])

	if ior, ok := extraFloat(m.Extras, "ior"); ok && ior > 0 {
		return material.NewDielectric(ior)
	}
	if m.AlphaMode == gltf.AlphaBlend {
		return material.NewDielectric(1.5)
	}
	if metallic >= metallicThreshold {
		return material.NewMetal(albedo, roughness)
	}
	return material.NewLambertian(albedo)
}

// extraFloat reads a numeric field from a glTF extras object
func extraFloat(extras any, key string) (float64, bool) {
	var fields map[string]any
	switch e := extras.(type) {
	case map[string]any:
		fields = e
	case json.RawMessage:
		if err := json.Unmarshal(e, &fields); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	v, ok := fields[key].(float64)
	return v, ok
}

// framingCamera looks at the centroid of the spheres from far enough to see all of them
func framingCamera(s *scene.Scene) geometry.CameraConfig {
	config := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 1, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 16.0 / 9.0,
	}
	if len(s.Shapes) == 0 {
		return config
	}

	var centroid core.Vec3
	for _, shape := range s.Shapes {
		centroid = centroid.Add(shape.(*geometry.Sphere).Center)
	}
	centroid = centroid.Multiply(1.0 / float64(len(s.Shapes)))

	extent := 0.0
	for _, shape := range s.Shapes {
		sphere := shape.(*geometry.Sphere)
		extent = math.Max(extent, sphere.Center.Subtract(centroid).Length()+sphere.Radius)
	}

	// Distance at which a bounding sphere of size extent fills the vertical field of view
	distance := extent / math.Sin(config.VFov*math.Pi/360.0)
	config.LookAt = centroid
	config.LookFrom = centroid.Add(core.NewVec3(0, 0.2, 1).Normalize().Multiply(distance))
	return config
}
