package mockserver

import (
	"time"
)

// ToolHandler evaluates a ToolConfig's responses against a call's
// arguments: the first response whose Condition is a subset of the
// merged arguments wins, and a response with no Condition at all is the
// catch-all default, tried last.
type ToolHandler struct {
	cfg ToolConfig
}

// NewToolHandler wraps cfg for repeated HandleCall invocations.
func NewToolHandler(cfg ToolConfig) *ToolHandler {
	return &ToolHandler{cfg: cfg}
}

// HandleCall merges args over type-implied zero values for the schema's
// declared properties (see mergeDefaults), selects a
// response, sleeps for its configured delay, and returns either a
// result value or an error message.
func (h *ToolHandler) HandleCall(args map[string]interface{}) (result interface{}, errMsg string) {
	merged := mergeDefaults(h.cfg.InputSchema, args)

	var fallback *ToolResponse
	for i := range h.cfg.Responses {
		resp := &h.cfg.Responses[i]
		if len(resp.Condition) == 0 {
			if fallback == nil {
				fallback = resp
			}
			continue
		}
		if matchesCondition(resp.Condition, merged) {
			return apply(resp)
		}
	}
	if fallback != nil {
		return apply(fallback)
	}
	return map[string]interface{}{}, ""
}

func apply(resp *ToolResponse) (interface{}, string) {
	if resp.DelayMS > 0 {
		time.Sleep(time.Duration(resp.DelayMS) * time.Millisecond)
	}
	if resp.Error != "" {
		return nil, resp.Error
	}
	return resp.Response, ""
}

func matchesCondition(condition, args map[string]interface{}) bool {
	for k, want := range condition {
		got, ok := args[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// mergeDefaults fills in any schema property missing from args with the
// zero value implied by its declared type, so a condition keyed on a
// property the caller omitted can still match against that default.
func mergeDefaults(schema map[string]interface{}, args map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(args))
	for k, v := range args {
		merged[k] = v
	}
	props, _ := schema["properties"].(map[string]interface{})
	for name, raw := range props {
		if _, present := merged[name]; present {
			continue
		}
		propSchema, _ := raw.(map[string]interface{})
		merged[name] = zeroValueFor(propSchema)
	}
	return merged
}

func zeroValueFor(propSchema map[string]interface{}) interface{} {
	t, _ := propSchema["type"].(string)
	switch t {
	case "integer", "number":
		return float64(0)
	case "boolean":
		return false
	case "array":
		return []interface{}{}
	case "object":
		return map[string]interface{}{}
	default:
		return ""
	}
}
