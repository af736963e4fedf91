// Package registry provides a global registry for level factories.
// Levels register themselves in init() functions, allowing the platform
// to discover and instantiate levels without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-platformer/internal/scene"
)

// LevelInfo contains metadata about a registered level.
type LevelInfo struct {
	ID    string
	Title string
}

// Factory produces a level definition. Each call yields an independent
// copy so sessions never share scene state.
type Factory func() (scene.Level, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a level factory to the registry.
// Typically called from an init() function.
// Panics if the ID is already registered or the factory fails.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: level %q already registered", id))
	}

	l, err := f()
	if err != nil {
		panic(fmt.Sprintf("registry: level %q: %v", id, err))
	}

	factories[id] = f
	titles[id] = l.Title
}

// List returns information about all registered levels, sorted by ID.
func List() []LevelInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]LevelInfo, 0, len(factories))
	for id := range factories {
		result = append(result, LevelInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a level by its ID.
// Returns an error if the level ID is not registered.
func Create(id string) (scene.Level, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return scene.Level{}, fmt.Errorf("registry: unknown level %q", id)
	}
	return f()
}

// Exists checks if a level with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Resolve returns a registered level by ID, or loads the argument as a
// level file path when no such ID exists.
func Resolve(idOrPath string) (scene.Level, error) {
	if Exists(idOrPath) {
		return Create(idOrPath)
	}
	l, err := scene.LoadFile(idOrPath)
	if err != nil {
		return scene.Level{}, fmt.Errorf("registry: %q is neither a level id nor a readable level file: %w", idOrPath, err)
	}
	return l, nil
}
