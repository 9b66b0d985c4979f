package nexusflow

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestConfigGetOr(t *testing.T) {
	cfg := NewConfig()
	cfg.Add("bool", true)
	cfg.Add("int", 42)
	cfg.Add("float", 2.5)
	cfg.Add("string", "hello")
	cfg.Add("list", []any{1, 2})

	assert.True(t, GetOr(cfg, "bool", false))
	assert.Equal(t, 42, GetOr(cfg, "int", 0))
	assert.Equal(t, 2.5, GetOr(cfg, "float", 0.0))
	assert.Equal(t, "hello", GetOr(cfg, "string", ""))
	assert.Equal(t, []any{1, 2}, GetOr[[]any](cfg, "list", nil))
}

func TestConfigGetOrDefaults(t *testing.T) {
	cfg := NewConfig()
	cfg.Add("string", "hello")

	assert.Equal(t, 7, GetOr(cfg, "missing", 7))
	assert.Equal(t, 0, GetOr(cfg, "string", 0), "type mismatch falls back to default")
	assert.False(t, GetOr(cfg, "string", false))
}

func TestConfigNumericCoercion(t *testing.T) {
	// YAML decoders hand back whatever integer width they like; a
	// module asking for a specific width must still get the value.
	cfg := NewConfig()
	cfg.Add("fromInt", int(5))
	cfg.Add("fromUint64", uint64(6))
	cfg.Add("fromFloat", 7.0)

	assert.Equal(t, int64(5), GetOr(cfg, "fromInt", int64(0)))
	assert.Equal(t, 5.0, GetOr(cfg, "fromInt", 0.0))
	assert.Equal(t, int(6), GetOr(cfg, "fromUint64", 0))
	assert.Equal(t, int64(7), GetOr(cfg, "fromFloat", int64(0)))

	assert.Equal(t, "", GetOr(cfg, "fromInt", ""), "numbers never coerce to strings")
}

func TestConfigReset(t *testing.T) {
	cfg := NewConfig()
	cfg.Add("a", 1)
	cfg.Reset(map[string]any{"b": 2})

	_, ok := cfg.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, GetOr(cfg, "b", 0))
	assert.Equal(t, 1, cfg.Len())
}

func TestZeroConfigIsUsable(t *testing.T) {
	var cfg Config
	assert.Equal(t, 3, GetOr(cfg, "anything", 3))
	cfg.Add("k", "v")
	assert.Equal(t, "v", GetOr(cfg, "k", ""))
}
