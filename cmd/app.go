package cmd

import (
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/urfave/cli"
)

// NewApp builds the command line application
func NewApp() *cli.App {
	defaults := renderer.DefaultConfig()

	app := cli.NewApp()
	app.Name = "sphere-raytracer"
	app.Usage = "render sphere scenes with Monte-Carlo path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a PNG file",
			Description: `
Render a built-in scene or a scene file (.json, .gltf, .glb, .pbrt). The image aspect
ratio overrides the aspect ratio recommended by the scene; when --height is 0
it is derived from --width and the scene's recommended aspect ratio.

The same seed always produces the same image, regardless of --workers.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "random",
					Usage: "built-in scene name, scene file path or scene file name in --scenes-dir",
				},
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "directory searched for scene files",
				},
				cli.IntFlag{
					Name:  "width",
					Value: defaults.Width,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 0,
					Usage: "frame height (0 = derive from the scene aspect ratio)",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: defaults.SamplesPerPixel,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: defaults.MaxDepth,
					Usage: "maximum number of ray bounces",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: defaults.Seed,
					Usage: "random seed for scene generation and sampling",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: defaults.NumWorkers,
					Usage: "number of render workers (0 = one per CPU)",
				},
				cli.BoolFlag{
					Name:  "bottom-up",
					Usage: "store frame rows bottom first; the PNG is always written upright",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "",
					Usage: "image filename (default output/<scene>/render_<timestamp>.png)",
				},
				cli.StringFlag{
					Name:  "save-scene",
					Value: "",
					Usage: "also write the rendered scene as a JSON scene file",
				},
				cli.BoolFlag{
					Name:  "preview, p",
					Usage: "show the finished frame in the terminal",
				},
			},
			Action: RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes and scene files",
			Action: ListScenes,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "directory searched for scene files",
				},
			},
		},
	}

	return app
}
