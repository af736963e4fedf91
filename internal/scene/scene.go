// Package scene holds the static layout the character moves through:
// tagged rectangles, one of which is the player's starting box.
package scene

import (
	"errors"
	"slices"
	"sync"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// PlayerID is the element id whose box seeds the character.
const PlayerID = "player"

var (
	// ErrNoPlayer is returned when a scene has no player element.
	ErrNoPlayer = errors.New("scene: no player element")
	// ErrMalformedRect is returned for non-finite or negative-size boxes.
	ErrMalformedRect = errors.New("scene: malformed rect")
)

// Element is one rectangle in the scene.
type Element struct {
	ID    string
	Tags  []string
	Box   core.Rect
	Color core.Color
}

// HasTag reports whether the element carries the tag.
func (e Element) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// Scene is a set of elements. Reads are safe from any goroutine.
type Scene struct {
	mu       sync.RWMutex
	elements []Element
}

// New creates a scene from elements. The slice is copied.
func New(elements []Element) *Scene {
	return &Scene{elements: slices.Clone(elements)}
}

// Elements returns a copy of all elements in declaration order.
func (s *Scene) Elements() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.elements)
}

// Element looks up an element by id.
func (s *Scene) Element(id string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// PlayerLayout returns the player element's box.
func (s *Scene) PlayerLayout() (core.Rect, error) {
	e, ok := s.Element(PlayerID)
	if !ok {
		return core.Rect{}, ErrNoPlayer
	}
	return e.Box, nil
}

// Tagged returns a snapshot of the boxes of every element carrying tag,
// in declaration order.
func (s *Scene) Tagged(tag string) []core.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var boxes []core.Rect
	for _, e := range s.elements {
		if e.HasTag(tag) {
			boxes = append(boxes, e.Box)
		}
	}
	return boxes
}

// Bounds returns the smallest rect enclosing every element.
func (s *Scene) Bounds() core.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.elements) == 0 {
		return core.Rect{}
	}
	minX, minY := s.elements[0].Box.X, s.elements[0].Box.Y
	maxX, maxY := s.elements[0].Box.Right(), s.elements[0].Box.Bottom()
	for _, e := range s.elements[1:] {
		minX = min(minX, e.Box.X)
		minY = min(minY, e.Box.Y)
		maxX = max(maxX, e.Box.Right())
		maxY = max(maxY, e.Box.Bottom())
	}
	return core.NewRect(minX, minY, maxX-minX, maxY-minY)
}

// Source returns an obstacle source that snapshots the tagged boxes on
// every call.
func (s *Scene) Source(tag string) TagSource {
	return TagSource{scene: s, tag: tag}
}

// TagSource serves one tag of a scene as collision obstacles.
type TagSource struct {
	scene *Scene
	tag   string
}

// Obstacles returns the current boxes for the tag.
func (t TagSource) Obstacles() []core.Rect {
	return t.scene.Tagged(t.tag)
}
