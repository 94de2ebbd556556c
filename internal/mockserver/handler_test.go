package mockserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoToolConfig() ToolConfig {
	return ToolConfig{
		Name: "echo",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"message"},
			"properties": map[string]interface{}{
				"message": map[string]interface{}{"type": "string"},
			},
		},
		Responses: []ToolResponse{
			{Condition: map[string]interface{}{"message": "fail"}, Error: "simulated failure"},
			{Response: map[string]interface{}{"echoed": true}},
		},
	}
}

func TestHandleCall_MatchesConditionBeforeFallback(t *testing.T) {
	h := NewToolHandler(echoToolConfig())
	_, errMsg := h.HandleCall(map[string]interface{}{"message": "fail"})
	assert.Equal(t, "simulated failure", errMsg)
}

func TestHandleCall_FallsBackToUnconditionalResponse(t *testing.T) {
	h := NewToolHandler(echoToolConfig())
	result, errMsg := h.HandleCall(map[string]interface{}{"message": "hello"})
	assert.Empty(t, errMsg)
	assert.Equal(t, map[string]interface{}{"echoed": true}, result)
}

func TestHandleCall_NoResponsesReturnsEmptyObject(t *testing.T) {
	h := NewToolHandler(ToolConfig{Name: "noop"})
	result, errMsg := h.HandleCall(nil)
	assert.Empty(t, errMsg)
	assert.Equal(t, map[string]interface{}{}, result)
}

func TestHandleCall_DelayIsHonored(t *testing.T) {
	cfg := ToolConfig{
		Name: "slow",
		Responses: []ToolResponse{
			{Response: map[string]interface{}{"done": true}, DelayMS: 30},
		},
	}
	h := NewToolHandler(cfg)
	start := time.Now()
	_, _ = h.HandleCall(nil)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMergeDefaults_FillsMissingSchemaPropertiesWithZeroValues(t *testing.T) {
	schema := map[string]interface{}{
		"properties": map[string]interface{}{
			"verbose": map[string]interface{}{"type": "boolean"},
			"count":   map[string]interface{}{"type": "integer"},
			"tags":    map[string]interface{}{"type": "array"},
		},
	}
	merged := mergeDefaults(schema, map[string]interface{}{"count": 5})
	assert.Equal(t, false, merged["verbose"])
	assert.Equal(t, 5, merged["count"])
	assert.Equal(t, []interface{}{}, merged["tags"])
}

func TestValuesEqual_NumericTypesCompareByValue(t *testing.T) {
	assert.True(t, valuesEqual(float64(5), 5))
	assert.True(t, valuesEqual(5, int64(5)))
	assert.False(t, valuesEqual("5", 5))
}

func TestMatchesCondition_RequiresEveryKeyToMatch(t *testing.T) {
	condition := map[string]interface{}{"id": "slow", "verbose": true}
	assert.True(t, matchesCondition(condition, map[string]interface{}{"id": "slow", "verbose": true}))
	assert.False(t, matchesCondition(condition, map[string]interface{}{"id": "slow", "verbose": false}))
	assert.False(t, matchesCondition(condition, map[string]interface{}{"id": "slow"}))
}

func TestDefaultFixtures_ParsesEmbeddedYAML(t *testing.T) {
	fixtures := DefaultFixtures()
	require.NotEmpty(t, fixtures)
	names := map[string]bool{}
	for _, f := range fixtures {
		names[f.Name] = true
	}
	assert.True(t, names["echo"])
	assert.True(t, names["lookup"])
}

func TestLoadFixtures_ParsesProvidedYAML(t *testing.T) {
	data := []byte(`
tools:
  - name: custom
    description: a custom tool
    responses:
      - response:
          ok: true
`)
	fixtures, err := LoadFixtures(data)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, "custom", fixtures[0].Name)
}
