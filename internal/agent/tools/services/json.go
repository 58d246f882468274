package services

import (
	"encoding/json"

	"github.com/northstar-insurance/server/internal/agent/model"
)

func toJSONMap(v any) (model.ToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return model.ToolResult(m), nil
}
