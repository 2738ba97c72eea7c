package cmd

import (
	"bytes"
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the built-in scenes and the scene files found in --scenes-dir.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	files, err := scene.ListSceneFiles(ctx.String("scenes-dir"))
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.App.Writer, sceneTable(append(scene.ListBuiltinScenes(), files...)))
	return nil
}

func sceneTable(infos []scene.SceneInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Scene", "Type", "Name", "Description"})
	for _, info := range infos {
		description := info.Description
		if description == "" {
			description = info.FilePath
		}
		table.Append([]string{info.ID, info.Type, info.DisplayName, description})
	}
	table.Render()
	return buf.String()
}
