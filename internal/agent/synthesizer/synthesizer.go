package synthesizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/prompts"
	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// Fixed user-facing sentences. These short-circuit the generative model:
// a known failure or an empty evidence set must never be improvised around.
const (
	// ToolFailureMessage covers tool results that carry an error marker.
	ToolFailureMessage = "I'm sorry, I wasn't able to look that up right now. Please try again in a moment or reach out to a NorthStar agent."
	// NoReferencesMessage covers the no-evidence case and doubles as the
	// literal fallback sentence the synthesis prompt mandates for
	// ungrounded answers.
	NoReferencesMessage = "I could not find any reference information to answer your question. Please contact a NorthStar agent for further assistance."
)

// ContextRetriever supplies relevance-ranked passages for a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) []string
}

// Synthesizer composes tool output, retrieved context, and conversation
// history into a grounded answer. The evidence constraints here are the core
// correctness guarantee of the whole system.
type Synthesizer struct {
	gateway   llm.Gateway
	retriever ContextRetriever
	cfg       model.SynthesisModelConfig
}

func New(gateway llm.Gateway, retriever ContextRetriever, cfg model.SynthesisModelConfig) *Synthesizer {
	return &Synthesizer{gateway: gateway, retriever: retriever, cfg: cfg}
}

// Generate produces the answer text for one query.
func (s *Synthesizer) Generate(ctx context.Context, query string, toolResult model.ToolResult, history []model.ConversationTurn) (string, error) {
	// A classified tool failure is explained, never embellished.
	if toolResult.IsError() {
		logx.Debug().Str("reason", toolResult.ErrorReason()).Msg("Tool result carried error marker; returning fixed failure message")
		return ToolFailureMessage, nil
	}

	passages := s.retriever.Retrieve(ctx, query, 0)

	// Hard guardrail: with no tool data and no retrieved context there is no
	// evidence to ground an answer, so the model is not consulted at all.
	if len(passages) == 0 && toolResult.Empty() {
		logx.Debug().Msg("No evidence available; returning fixed no-references message")
		return NoReferencesMessage, nil
	}

	prompt, err := prompts.RenderSynthesis(ctx, prompts.SynthesisVars{
		Question: query,
		ToolData: toolResult,
		Passages: passages,
		History:  history,
		Fallback: NoReferencesMessage,
	})
	if err != nil {
		return "", fmt.Errorf("render synthesis prompt: %w", err)
	}

	answer, err := s.gateway.Invoke(ctx, s.cfg.Model, prompt, s.cfg.Temperature, s.cfg.MaxTokens)
	if err != nil {
		if !errors.Is(err, errx.ErrModelInvocation) {
			return "", err
		}
		logx.Warn().Err(err).Str("fallback_model", s.cfg.FallbackModel).Msg("Primary synthesis model failed; trying fallback")
		answer, err = s.gateway.Invoke(ctx, s.cfg.FallbackModel, prompt, s.cfg.Temperature, s.cfg.MaxTokens)
		if err != nil {
			return "", err
		}
	}

	return answer, nil
}
