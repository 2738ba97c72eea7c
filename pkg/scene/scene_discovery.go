package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // Human readable name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin", "json", "gltf" or "pbrt"
	FilePath    string `json:"filePath"`    // Path to the scene file (file types only)
}

// builtinScene pairs a scene's metadata with its constructor
type builtinScene struct {
	info  SceneInfo
	build func(seed int64) *Scene
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "random",
			DisplayName: "Random Spheres",
			Description: "Ground sphere with a grid of small random spheres and three large spheres",
			Type:        "builtin",
		},
		build: NewRandomScene,
	},
	{
		info: SceneInfo{
			ID:          "default",
			DisplayName: "Default Scene",
			Description: "One sphere of each material and a hollow glass sphere",
			Type:        "builtin",
		},
		build: func(int64) *Scene { return NewDefaultScene() },
	},
	{
		info: SceneInfo{
			ID:          "grid",
			DisplayName: "Sphere Grid",
			Description: "Metal spheres colored across the hue wheel on a grey ground",
			Type:        "builtin",
		},
		build: func(int64) *Scene { return NewSphereGridScene() },
	},
}

// ListBuiltinScenes returns the metadata of every built-in scene
func ListBuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		infos = append(infos, b.info)
	}
	return infos
}

// ByName constructs a built-in scene. The seed only affects randomized scenes.
func ByName(name string, seed int64) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.build(seed), nil
		}
	}
	return nil, fmt.Errorf("unknown built-in scene %q", name)
}

// sceneFileTypes maps scene file extensions to their SceneInfo type
var sceneFileTypes = map[string]string{
	".json": "json",
	".gltf": "gltf",
	".glb":  "gltf",
	".pbrt": "pbrt",
}

// ListSceneFiles scans dir for loadable scene files. A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SceneInfo{}, nil
		}
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		sceneType, ok := sceneFileTypes[ext]
		if !ok {
			continue
		}
		nameWithoutExt := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		scenes = append(scenes, SceneInfo{
			ID:          nameWithoutExt,
			DisplayName: titleCase(nameWithoutExt),
			Type:        sceneType,
			FilePath:    filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
