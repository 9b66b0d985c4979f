package nexusflow

import "reflect"

// Config is a per-node configuration mapping. The declarative loader
// fills it from the node's `config:` section; programmatic callers use
// Add. Values are immutable once the actor is constructed.
type Config struct {
	values map[string]any
}

// NewConfig returns an empty configuration.
func NewConfig() Config {
	return Config{values: map[string]any{}}
}

// Reset replaces the whole mapping.
func (c *Config) Reset(values map[string]any) {
	c.values = values
}

// Add sets a single key.
func (c *Config) Add(key string, value any) {
	if c.values == nil {
		c.values = map[string]any{}
	}
	c.values[key] = value
}

// Get returns the raw value for key.
func (c Config) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of keys.
func (c Config) Len() int { return len(c.values) }

// GetOr returns the value stored under key as a T, or def when the key
// is absent or the value cannot be represented as T. Numeric values
// convert across widths (a YAML integer read as int satisfies an int64
// or float64 request), everything else must match exactly.
func GetOr[T any](c Config, key string, def T) T {
	raw, ok := c.values[key]
	if !ok || raw == nil {
		return def
	}
	if v, ok := raw.(T); ok {
		return v
	}

	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(raw)
	if isNumericKind(rv.Kind()) && isNumericKind(want.Kind()) && rv.CanConvert(want) {
		return rv.Convert(want).Interface().(T)
	}
	return def
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Reserved node configuration keys interpreted by the runtime itself.
const (
	// ConfigKeySyncInputs selects the synchronized fan-in (fusion)
	// worker loop.
	ConfigKeySyncInputs = "syncInputs"
	// ConfigKeyCloneMessage forces the dispatcher to deep-copy on
	// broadcast instead of sharing the payload cell.
	ConfigKeyCloneMessage = "cloneMessage"
	// ConfigKeyBatchSize overrides the worker's batch size.
	ConfigKeyBatchSize = "batchSize"
	// ConfigKeyBatchTimeoutMs overrides the batch collection window.
	ConfigKeyBatchTimeoutMs = "batchTimeoutMs"
	// ConfigKeyFusionTimeoutMs overrides the fusion cache eviction age.
	ConfigKeyFusionTimeoutMs = "fusionTimeoutMs"
)
