package core

// ParameterMap is an ordered string-keyed map of parameter values. A value is
// a float64, bool, string or a nested *ParameterMap. Used for environment
// parameters, player parameters and per-type parameters; versioned defaults
// are seeded before a log's own parameter blocks override them.
type ParameterMap struct {
	keys   []string
	values map[string]any
}

// NewParameterMap creates an empty parameter map.
func NewParameterMap() *ParameterMap {
	return &ParameterMap{values: make(map[string]any)}
}

// Set stores a value under key, preserving first-insertion order.
func (p *ParameterMap) Set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the raw value for key.
func (p *ParameterMap) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Number returns the float value for key, or the fallback if absent or of a
// different kind.
func (p *ParameterMap) Number(key string, fallback float64) float64 {
	if v, ok := p.values[key].(float64); ok {
		return v
	}
	return fallback
}

// Bool returns the bool value for key, or the fallback.
func (p *ParameterMap) Bool(key string, fallback bool) bool {
	if v, ok := p.values[key].(bool); ok {
		return v
	}
	return fallback
}

// String returns the string value for key, or the fallback.
func (p *ParameterMap) String(key string, fallback string) string {
	if v, ok := p.values[key].(string); ok {
		return v
	}
	return fallback
}

// Nested returns the nested map stored under key, or nil.
func (p *ParameterMap) Nested(key string) *ParameterMap {
	v, _ := p.values[key].(*ParameterMap)
	return v
}

// Keys returns the keys in insertion order. The slice is shared; callers must
// not modify it.
func (p *ParameterMap) Keys() []string { return p.keys }

// Len returns the number of entries.
func (p *ParameterMap) Len() int { return len(p.keys) }

// Range calls fn for each entry in insertion order until fn returns false.
func (p *ParameterMap) Range(fn func(key string, value any) bool) {
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// ToMap returns a plain map copy of the entries, with nested maps converted
// recursively. Intended for JSON export.
func (p *ParameterMap) ToMap() map[string]any {
	out := make(map[string]any, len(p.keys))
	for _, k := range p.keys {
		if nested, ok := p.values[k].(*ParameterMap); ok {
			out[k] = nested.ToMap()
			continue
		}
		out[k] = p.values[k]
	}
	return out
}
