package source

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Strob0t/ganttboard/internal/config"
)

// Factory is a constructor function that creates a new Source instance.
type Factory func(cfg config.Source) (Source, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a source factory available by kind.
// It is typically called from an init() function in the adapter package.
func Register(kind string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("source: duplicate registration for %q", kind))
	}
	factories[kind] = factory
}

// New creates the Source selected by cfg.Kind.
func New(cfg config.Source) (Source, error) {
	mu.RLock()
	factory, ok := factories[cfg.Kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("source: unknown kind %q (available: %v)", cfg.Kind, Available())
	}
	return factory(cfg)
}

// Available returns the registered kinds in sorted order.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
