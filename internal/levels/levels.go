// Package levels registers the built-in levels shipped with the binary.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/scene"
)

//go:embed data/*.yaml
var files embed.FS

func init() {
	entries, err := fs.ReadDir(files, "data")
	if err != nil {
		panic(fmt.Sprintf("levels: read embedded data: %v", err))
	}
	for _, e := range entries {
		name := path.Join("data", e.Name())
		data, err := files.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("levels: read %s: %v", name, err))
		}
		level, err := scene.ParseYAML(data)
		if err != nil {
			panic(fmt.Sprintf("levels: %s: %v", name, err))
		}
		registry.Register(level.ID, func() (scene.Level, error) {
			return scene.ParseYAML(data)
		})
	}
}
