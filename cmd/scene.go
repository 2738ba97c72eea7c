package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// createScene resolves name as a built-in scene, a scene file path, or a scene file in dir
func createScene(name string, seed int64, dir string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("no scene given")
	}

	if s, err := scene.ByName(name, seed); err == nil {
		return s, nil
	}

	if filepath.Ext(name) != "" {
		if _, err := os.Stat(name); err == nil {
			return loaders.Load(name)
		}
	}

	files, err := scene.ListSceneFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == name {
			return loaders.Load(info.FilePath)
		}
	}

	return nil, fmt.Errorf("unknown scene %q: not a built-in scene or a scene file", name)
}
