package recording

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/vmap"
)

// CanvasFactory creates a canvas for frames of the given size.
// Factories are registered via Register() and called by NewCanvas().
type CanvasFactory func(width, height int) (vmap.Canvas, error)

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	canvases   = make(map[string]CanvasFactory)
)

func init() {
	Register("record", func(int, int) (vmap.Canvas, error) {
		return NewRecorder(), nil
	})
}

// Register registers a canvas factory with the given name.
// This function is typically called from init() in canvas packages,
// following the database/sql driver pattern:
//
//	func init() {
//	    recording.Register("raster", func(w, h int) (vmap.Canvas, error) {
//	        return NewRaster(w, h), nil
//	    })
//	}
//
// Register panics if factory is nil or the name is already taken.
func Register(name string, factory CanvasFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("recording: Register factory is nil")
	}
	if _, dup := canvases[name]; dup {
		panic("recording: Register called twice for " + name)
	}
	canvases[name] = factory
}

// Unregister removes a canvas from the registry.
// If the canvas is not registered, this is a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(canvases, name)
}

// NewCanvas creates a canvas by name.
// The error message includes a hint about forgotten imports.
func NewCanvas(name string, width, height int) (vmap.Canvas, error) {
	registryMu.RLock()
	factory, ok := canvases[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("recording: unknown canvas %q (forgotten import?)", name)
	}
	return factory(width, height)
}

// Canvases returns a sorted list of registered canvas names.
func Canvases() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(canvases))
	for name := range canvases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a canvas with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := canvases[name]
	return ok
}
