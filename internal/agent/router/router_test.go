package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-insurance/server/internal/agent/model"
	errx "github.com/northstar-insurance/server/internal/core/error"
)

// fakeGateway answers per model id and records the invocation order.
type fakeGateway struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeGateway) Invoke(_ context.Context, modelID, _ string, _ float32, _ int) (string, error) {
	f.calls = append(f.calls, modelID)
	if err, ok := f.errs[modelID]; ok {
		return "", err
	}
	return f.responses[modelID], nil
}

func testConfig() model.RouterModelConfig {
	return model.RouterModelConfig{
		Model:           "primary",
		FallbackModel:   "fallback",
		EscalationModel: "escalation",
		MaxTokens:       500,
	}
}

func TestRouteHighConfidence(t *testing.T) {
	gw := &fakeGateway{responses: map[string]string{
		"primary": `{"tool": "policy_lookup", "confidence": "high", "reason": "asks about coverage"}`,
	}}

	decision, err := New(gw, testConfig()).Route(context.Background(), "What is my coverage limit on AUTO-10001?")
	require.NoError(t, err)

	assert.Equal(t, model.ToolPolicyLookup, decision.Tool)
	assert.Equal(t, model.ConfidenceHigh, decision.Confidence)
	assert.Equal(t, "asks about coverage", decision.Reason)
	assert.Equal(t, []string{"primary"}, gw.calls)
}

func TestRouteFallbackOnInvocationFailure(t *testing.T) {
	gw := &fakeGateway{
		errs: map[string]error{"primary": errx.WrapModel("primary", errors.New("throttled"))},
		responses: map[string]string{
			"fallback": `{"tool": "claim_status", "confidence": "medium"}`,
		},
	}

	decision, err := New(gw, testConfig()).Route(context.Background(), "Where is my claim?")
	require.NoError(t, err)

	assert.Equal(t, model.ToolClaimStatus, decision.Tool)
	assert.Equal(t, []string{"primary", "fallback"}, gw.calls)
}

func TestRouteFallbackTriedExactlyOnce(t *testing.T) {
	gw := &fakeGateway{errs: map[string]error{
		"primary":  errx.WrapModel("primary", errors.New("down")),
		"fallback": errx.WrapModel("fallback", errors.New("also down")),
	}}

	_, err := New(gw, testConfig()).Route(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrModelInvocation))
	assert.Equal(t, []string{"primary", "fallback"}, gw.calls)
}

func TestRouteNoFallbackOnMalformedOutput(t *testing.T) {
	// parse failures are not invocation failures; retrying a different
	// model would not make bad output parseable
	gw := &fakeGateway{responses: map[string]string{
		"primary": "no JSON here at all",
	}}

	_, err := New(gw, testConfig()).Route(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrMalformedOutput))
	assert.Equal(t, []string{"primary"}, gw.calls)
}

func TestRouteEscalatesLowConfidence(t *testing.T) {
	gw := &fakeGateway{responses: map[string]string{
		"primary":    `{"tool": "none", "confidence": "low"}`,
		"escalation": `{"tool": "document_check", "confidence": "high"}`,
	}}

	decision, err := New(gw, testConfig()).Route(context.Background(), "What paperwork do I need?")
	require.NoError(t, err)

	assert.Equal(t, model.ToolDocumentCheck, decision.Tool)
	assert.Equal(t, model.ConfidenceHigh, decision.Confidence)
	assert.Equal(t, []string{"primary", "escalation"}, gw.calls)
}

func TestRouteEscalationFailureKeepsOriginalDecision(t *testing.T) {
	gw := &fakeGateway{
		responses: map[string]string{
			"primary": `{"tool": "claim_status", "confidence": "low"}`,
		},
		errs: map[string]error{"escalation": errx.WrapModel("escalation", errors.New("down"))},
	}

	decision, err := New(gw, testConfig()).Route(context.Background(), "claim?")
	require.NoError(t, err)

	assert.Equal(t, model.ToolClaimStatus, decision.Tool)
	assert.Equal(t, model.ConfidenceLow, decision.Confidence)
}

func TestDecisionFromObjectNormalisesUntrustedFields(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]any
		want model.RoutingDecision
	}{
		{
			name: "unknown tool becomes invalid",
			obj:  map[string]any{"tool": "weather_report", "confidence": "high"},
			want: model.RoutingDecision{Tool: model.ToolInvalid, Confidence: model.ConfidenceHigh},
		},
		{
			name: "missing fields default safe",
			obj:  map[string]any{},
			want: model.RoutingDecision{Tool: model.ToolNone, Confidence: model.ConfidenceLow},
		},
		{
			name: "non-string fields ignored",
			obj:  map[string]any{"tool": 7, "confidence": true, "reason": 1.5},
			want: model.RoutingDecision{Tool: model.ToolNone, Confidence: model.ConfidenceLow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decisionFromObject(tt.obj))
		})
	}
}
