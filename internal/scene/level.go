package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID       string        `yaml:"id"`
	Title    string        `yaml:"title"`
	Cell     YAMLSize      `yaml:"cell"`
	Elements []YAMLElement `yaml:"elements"`
}

// YAMLSize is the size of one terminal cell in scene units.
type YAMLSize struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// YAMLElement represents one rectangle in YAML format.
type YAMLElement struct {
	ID    string   `yaml:"id"`
	Tags  []string `yaml:"tags,omitempty"`
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	W     float64  `yaml:"w"`
	H     float64  `yaml:"h"`
	Color string   `yaml:"color,omitempty"`
}

// Level is a parsed level ready to be instantiated.
type Level struct {
	ID       string
	Title    string
	CellW    float64
	CellH    float64
	Elements []Element
	FilePath string
}

// NewScene builds a fresh scene from the level's elements.
func (l Level) NewScene() *Scene {
	return New(l.Elements)
}

// ParseYAML parses and validates a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	if yl.ID == "" {
		return Level{}, errors.New("level id is required")
	}
	if yl.Cell.W <= 0 || yl.Cell.H <= 0 {
		return Level{}, fmt.Errorf("level %s: cell size must be positive, got %vx%v", yl.ID, yl.Cell.W, yl.Cell.H)
	}

	title := yl.Title
	if title == "" {
		title = yl.ID
	}

	level := Level{
		ID:       yl.ID,
		Title:    title,
		CellW:    yl.Cell.W,
		CellH:    yl.Cell.H,
		Elements: make([]Element, 0, len(yl.Elements)),
	}

	seen := make(map[string]bool, len(yl.Elements))
	hasPlayer := false
	for i, ye := range yl.Elements {
		id := ye.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		if seen[id] {
			return Level{}, fmt.Errorf("level %s: duplicate element id %q", yl.ID, id)
		}
		seen[id] = true

		box := core.NewRect(ye.X, ye.Y, ye.W, ye.H)
		if !box.Valid() {
			return Level{}, fmt.Errorf("level %s: element %s: %w", yl.ID, id, ErrMalformedRect)
		}
		color, ok := core.ParseColor(ye.Color)
		if !ok {
			return Level{}, fmt.Errorf("level %s: element %s: unknown color %q", yl.ID, id, ye.Color)
		}

		if id == PlayerID {
			hasPlayer = true
		}
		level.Elements = append(level.Elements, Element{
			ID:    id,
			Tags:  ye.Tags,
			Box:   box,
			Color: color,
		})
	}
	if !hasPlayer {
		return Level{}, fmt.Errorf("level %s: %w", yl.ID, ErrNoPlayer)
	}

	return level, nil
}

// LoadFile loads a level from a file path.
func LoadFile(path string) (Level, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !isSupportedExtension(ext) {
		return Level{}, fmt.Errorf("unsupported level format: %s", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("read level: %w", err)
	}

	level, err := ParseYAML(data)
	if err != nil {
		return Level{}, fmt.Errorf("%s: %w", path, err)
	}
	level.FilePath = path
	return level, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}

func isSupportedExtension(ext string) bool {
	for _, e := range FormatExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}
