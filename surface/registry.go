// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"sort"
	"sync"
)

// SinkOptions configures sinks created through the registry.
type SinkOptions struct {
	// Dir is the output directory of file sinks.
	Dir string

	// Pattern names frame files; see FileSink.
	Pattern string

	// Keep is the number of frames a memory sink retains (0 = all).
	Keep int
}

// SinkFactory creates a FrameSink with the given options.
type SinkFactory func(opts SinkOptions) (FrameSink, error)

// RegistryEntry represents a registered sink.
type RegistryEntry struct {
	// Name is the unique identifier for this sink.
	Name string

	// Priority determines selection order (higher = preferred).
	Priority int

	// Factory creates sink instances.
	Factory SinkFactory
}

var globalRegistry = &Registry{}

// Registry maps sink names to factories so drivers can pick an output
// format by name, for example from a config file.
//
//	sink, err := surface.NewSinkByName("tiff", surface.SinkOptions{Dir: "out"})
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a sink to the global registry. Registering a name that
// already exists replaces the previous entry.
func Register(name string, priority int, factory SinkFactory) {
	globalRegistry.Register(name, priority, factory)
}

// Unregister removes a sink from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered sink names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Get returns information about a specific sink.
func Get(name string) (*RegistryEntry, bool) {
	return globalRegistry.Get(name)
}

// NewSink creates a sink using the highest priority registration.
func NewSink(opts SinkOptions) (FrameSink, error) {
	return globalRegistry.NewSink(opts)
}

// NewSinkByName creates a sink using a specific named registration.
func NewSinkByName(name string, opts SinkOptions) (FrameSink, error) {
	return globalRegistry.NewSinkByName(name, opts)
}

// Register adds a sink to this registry.
func (r *Registry) Register(name string, priority int, factory SinkFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	r.entries[name] = &RegistryEntry{
		Name:     name,
		Priority: priority,
		Factory:  factory,
	}
}

// Unregister removes a sink from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered sink names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames()
}

// Get returns information about a specific sink.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// NewSink creates a sink using the first registration, by priority,
// whose factory succeeds.
func (r *Registry) NewSink(opts SinkOptions) (FrameSink, error) {
	r.mu.RLock()
	names := r.sortedNames()
	r.mu.RUnlock()

	if len(names) == 0 {
		return nil, ErrNoSink
	}

	var lastErr error
	for _, name := range names {
		s, err := r.NewSinkByName(name, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewSinkByName creates a sink using a specific registration.
func (r *Registry) NewSinkByName(name string, opts SinkOptions) (FrameSink, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &SinkNotFoundError{Name: name}
	}
	return entry.Factory(opts)
}

// sortedNames returns sink names sorted by priority (highest first), then
// by name. Must be called with lock held.
func (r *Registry) sortedNames() []string {
	if len(r.entries) == 0 {
		return nil
	}

	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoSink is returned when no sinks are registered.
var ErrNoSink = errors.New("surface: no sink registered")

// SinkNotFoundError indicates a named sink is not registered.
type SinkNotFoundError struct {
	Name string
}

func (e *SinkNotFoundError) Error() string {
	return "surface: sink not found: " + e.Name
}

// init registers the built-in sinks.
func init() {
	for _, enc := range []struct {
		e        Encoding
		priority int
	}{
		{EncodingPNG, 100},
		{EncodingTIFF, 50},
		{EncodingBMP, 40},
	} {
		Register(string(enc.e), enc.priority, func(opts SinkOptions) (FrameSink, error) {
			return FileSink{Dir: opts.Dir, Pattern: opts.Pattern, Encoding: enc.e}, nil
		})
	}
	Register("memory", 10, func(opts SinkOptions) (FrameSink, error) {
		return NewMemorySink(opts.Keep), nil
	})
	Register("discard", 0, func(SinkOptions) (FrameSink, error) {
		return Discard, nil
	})
}
