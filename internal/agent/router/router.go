package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/parsers"
	"github.com/northstar-insurance/server/internal/agent/prompts"
	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// routingTemperature keeps classification deterministic.
const routingTemperature = 0

// Router classifies a free-text query into exactly one tool plus a
// confidence level. Stateless per query.
type Router struct {
	gateway llm.Gateway
	cfg     model.RouterModelConfig
}

func New(gateway llm.Gateway, cfg model.RouterModelConfig) *Router {
	return &Router{gateway: gateway, cfg: cfg}
}

// Route produces the final RoutingDecision for a query. The primary model is
// invoked once; a designated fallback model is tried exactly once when the
// primary invocation fails. A low-confidence decision is re-derived once
// against the escalation model and the escalated decision wins.
func (r *Router) Route(ctx context.Context, query string) (model.RoutingDecision, error) {
	prompt, err := prompts.RenderRouter(ctx, query)
	if err != nil {
		return model.RoutingDecision{}, fmt.Errorf("render router prompt: %w", err)
	}

	decision, err := r.routeOnce(ctx, r.cfg.Model, prompt)
	if err != nil {
		if !errors.Is(err, errx.ErrModelInvocation) {
			return model.RoutingDecision{}, err
		}
		logx.Warn().Err(err).Str("fallback_model", r.cfg.FallbackModel).Msg("Primary routing model failed; trying fallback")
		decision, err = r.routeOnce(ctx, r.cfg.FallbackModel, prompt)
		if err != nil {
			return model.RoutingDecision{}, err
		}
	}

	if decision.Confidence == model.ConfidenceLow {
		logx.Debug().
			Str("tool", string(decision.Tool)).
			Str("escalation_model", r.cfg.EscalationModel).
			Msg("Low routing confidence; escalating")
		escalated, eerr := r.routeOnce(ctx, r.cfg.EscalationModel, prompt)
		if eerr != nil {
			// keep the original low-confidence decision rather than failing
			// the whole request over an escalation-only error
			logx.Warn().Err(eerr).Msg("Routing escalation failed; keeping original decision")
			return decision, nil
		}
		decision = escalated
	}

	logx.Debug().
		Str("tool", string(decision.Tool)).
		Str("confidence", string(decision.Confidence)).
		Str("reason", decision.Reason).
		Msg("Query routed")
	return decision, nil
}

func (r *Router) routeOnce(ctx context.Context, modelID, prompt string) (model.RoutingDecision, error) {
	raw, err := r.gateway.Invoke(ctx, modelID, prompt, routingTemperature, r.cfg.MaxTokens)
	if err != nil {
		return model.RoutingDecision{}, err
	}

	obj, err := parsers.ExtractJSONObject(raw)
	if err != nil {
		return model.RoutingDecision{}, fmt.Errorf("parse routing decision: %w", err)
	}

	return decisionFromObject(obj), nil
}

// decisionFromObject validates the parsed object's shape. The model is an
// untrusted boundary: field presence is never assumed, and the tool value is
// normalised into the enumerated set (or "invalid") before anything
// downstream sees it.
func decisionFromObject(obj map[string]any) model.RoutingDecision {
	d := model.RoutingDecision{Tool: model.ToolNone, Confidence: model.ConfidenceLow}
	if v, ok := obj["tool"].(string); ok {
		d.Tool = model.ParseToolName(v)
	}
	if v, ok := obj["confidence"].(string); ok {
		d.Confidence = model.ParseConfidence(v)
	}
	if v, ok := obj["reason"].(string); ok {
		d.Reason = v
	}
	return d
}
