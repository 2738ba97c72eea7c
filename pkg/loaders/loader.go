package loaders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

var (
	// ErrUnsupportedFormat is returned for scene files with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported scene format")
	// ErrInvalidScene is returned when a scene file is well-formed but describes an unusable scene
	ErrInvalidScene = errors.New("invalid scene")
)

// Load reads a scene file, choosing the loader by file extension
func Load(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".pbrt":
		return LoadPBRT(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// sceneName derives a scene name from a file path
func sceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
