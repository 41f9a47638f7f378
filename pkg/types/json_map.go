package types

// JSONMap is a string-keyed bag of JSON-compatible values, persisted through
// GORM's json serializer.
type JSONMap map[string]any

// Merge copies every key from other into the map, overwriting existing keys.
func (m JSONMap) Merge(other map[string]any) JSONMap {
	if m == nil {
		m = JSONMap{}
	}
	for k, v := range other {
		m[k] = v
	}
	return m
}

// Get returns the value stored at key, or fallback when the key is absent.
func (m JSONMap) Get(key string, fallback any) any {
	if m == nil {
		return fallback
	}
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
