package filter

import "sync"

// Extractor pulls one logical column out of event data.
type Extractor func(data map[string]any) (any, bool)

// Registry holds the filterable column tables per event source. Tables are
// registered once at startup; only registered columns are filterable for a
// source, everything else is treated as unknown and never matches.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]map[string]Extractor
}

// NewRegistry creates an empty field registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]map[string]Extractor),
	}
}

// Register adds the column table for an event source, replacing any previous
// table for the same source.
func (r *Registry) Register(source string, columns map[string]Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table := make(map[string]Extractor, len(columns))
	for name, extract := range columns {
		table[name] = extract
	}

	r.sources[source] = table
}

// Mapper returns the field mapper for an event source. The mapper reports
// false for unregistered sources and unregistered columns.
func (r *Registry) Mapper(source string) FieldMapper {
	return func(data map[string]any, column string) (any, bool) {
		r.mu.RLock()
		table, ok := r.sources[source]
		r.mu.RUnlock()

		if !ok {
			return nil, false
		}

		extract, ok := table[column]
		if !ok {
			return nil, false
		}

		return extract(data)
	}
}

// Column returns an extractor that reads a top-level key from event data.
func Column(key string) Extractor {
	return func(data map[string]any) (any, bool) {
		value, ok := data[key]

		return value, ok
	}
}
