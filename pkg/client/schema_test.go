package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		parsed, err := extractJSON(`{"count": 2}`)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, parsed["count"], 0.001)
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		parsed, err := extractJSON(`I found the data: {"status": "ok", "nested": {"a": 1}} hope that helps`)
		require.NoError(t, err)
		assert.Equal(t, "ok", parsed["status"])
		assert.Contains(t, parsed, "nested")
	})

	t.Run("no braces", func(t *testing.T) {
		_, err := extractJSON("nothing structured")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no JSON object")
	})

	t.Run("malformed json between braces", func(t *testing.T) {
		_, err := extractJSON(`{"broken": }`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse response JSON")
	})
}

func TestValidateShape(t *testing.T) {
	parsed := map[string]any{
		"name":    "evo",
		"total":   float64(12),
		"active":  true,
		"items":   []any{"a"},
		"details": map[string]any{"k": "v"},
	}

	t.Run("all types match", func(t *testing.T) {
		err := validateShape(parsed, map[string]string{
			"name":    "string",
			"total":   "number",
			"active":  "bool",
			"items":   "array",
			"details": "object",
		})
		assert.NoError(t, err)
	})

	t.Run("any matches everything", func(t *testing.T) {
		err := validateShape(parsed, map[string]string{"name": "any", "items": "any"})
		assert.NoError(t, err)
	})

	t.Run("extra payload fields allowed", func(t *testing.T) {
		err := validateShape(parsed, map[string]string{"name": "string"})
		assert.NoError(t, err)
	})

	t.Run("missing field", func(t *testing.T) {
		err := validateShape(parsed, map[string]string{"missing": "string"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing field "missing"`)
	})

	t.Run("wrong type reports expected and actual", func(t *testing.T) {
		err := validateShape(parsed, map[string]string{"name": "number"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected number, got string")
	})

	t.Run("deterministic first error with multiple mismatches", func(t *testing.T) {
		// fields checked in sorted order, so "active" reports before "total"
		err := validateShape(parsed, map[string]string{"total": "string", "active": "array"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `field "active"`)
	})
}

func TestValidShapeType(t *testing.T) {
	for _, typ := range ValidTypes() {
		assert.True(t, ValidShapeType(typ), typ)
	}
	assert.False(t, ValidShapeType("integer"))
	assert.False(t, ValidShapeType(""))
}
