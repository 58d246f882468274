package extractor

import (
	"context"

	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/parsers"
	"github.com/northstar-insurance/server/internal/agent/prompts"
	"github.com/northstar-insurance/server/internal/agent/tools"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// extractionTemperature keeps extraction deterministic.
const extractionTemperature = 0

// Extractor derives the selected tool's structured parameters from free
// text. Extraction never fails upward: any failure degrades to an empty
// mapping and the invoker copes with missing values.
type Extractor struct {
	gateway  llm.Gateway
	registry *tools.Registry
	cfg      model.ExtractorModelConfig
}

func New(gateway llm.Gateway, registry *tools.Registry, cfg model.ExtractorModelConfig) *Extractor {
	return &Extractor{gateway: gateway, registry: registry, cfg: cfg}
}

// Extract returns the tool's parameters keyed by name. Required parameters
// the model could not find are present with a nil value, never omitted, so
// the invoker can detect incompleteness.
func (e *Extractor) Extract(ctx context.Context, query string, tool model.ToolName) map[string]any {
	spec, ok := e.registry.Lookup(tool)
	if !ok {
		return map[string]any{}
	}

	prompt, err := prompts.RenderExtractor(ctx, tool, spec.RequiredParams, query)
	if err != nil {
		logx.Warn().Err(err).Str("tool", string(tool)).Msg("Extractor prompt render failed; degrading to empty arguments")
		return map[string]any{}
	}

	raw, err := e.gateway.Invoke(ctx, e.cfg.Model, prompt, extractionTemperature, e.cfg.MaxTokens)
	if err != nil {
		logx.Warn().Err(err).Str("tool", string(tool)).Msg("Extractor invocation failed; degrading to empty arguments")
		return map[string]any{}
	}

	obj, err := parsers.ExtractJSONObject(raw)
	if err != nil {
		logx.Warn().Err(err).Str("tool", string(tool)).Msg("Extractor output unparsable; degrading to empty arguments")
		return map[string]any{}
	}

	args, ok := obj["arguments"].(map[string]any)
	if !ok {
		logx.Warn().Str("tool", string(tool)).Msg("Extractor output missing arguments object; degrading to empty arguments")
		return map[string]any{}
	}

	// unset required parameters stay visible as explicit nulls
	for _, p := range spec.RequiredParams {
		if _, present := args[p]; !present {
			args[p] = nil
		}
	}

	logx.Debug().Str("tool", string(tool)).Int("params", len(args)).Msg("Arguments extracted")
	return args
}
