package triage

import (
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/agent"
)

// toExecutionSettings picks the recognized keys out of the request settings.
// Unknown keys and values of the wrong type are skipped.
func toExecutionSettings(settings map[string]any, logger *zap.Logger) agent.ExecutionSettings {
	var out agent.ExecutionSettings
	for key, value := range settings {
		switch key {
		case "temperature":
			if f, ok := toFloat(value); ok {
				out.Temperature = &f
				continue
			}
		case "top_p":
			if f, ok := toFloat(value); ok {
				out.TopP = &f
				continue
			}
		case "max_tokens":
			if f, ok := toFloat(value); ok && f > 0 && f == math.Trunc(f) {
				n := int(f)
				out.MaxTokens = &n
				continue
			}
		}
		logger.Debug("ignoring request setting", zap.String("key", key), zap.Any("value", value))
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
