package orchestrator

import (
	"context"

	"github.com/northstar-insurance/server/internal/agent/conversations"
	"github.com/northstar-insurance/server/internal/agent/extractor"
	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/router"
	"github.com/northstar-insurance/server/internal/agent/synthesizer"
	"github.com/northstar-insurance/server/internal/agent/tools"
	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// DefaultSessionID is used when a request carries no session id.
const DefaultSessionID = "default"

// Orchestrator sequences one request through the fixed pipeline:
// ReceiveQuery, LoadHistory, Route, ExtractArguments, InvokeTool,
// Synthesize, PersistTurn, Respond. All stages run strictly sequentially;
// no request-scoped state survives outside the call stack, so concurrent
// requests are safe by construction.
type Orchestrator struct {
	router    *router.Router
	extractor *extractor.Extractor
	invoker   tools.Invoker
	synth     *synthesizer.Synthesizer
	memory    *conversations.Manager
}

func New(
	rt *router.Router,
	ex *extractor.Extractor,
	inv tools.Invoker,
	sy *synthesizer.Synthesizer,
	mem *conversations.Manager,
) *Orchestrator {
	return &Orchestrator{
		router:    rt,
		extractor: ex,
		invoker:   inv,
		synth:     sy,
		memory:    mem,
	}
}

// Handle runs one orchestration cycle. Client-input problems come back as
// AppErrors with a 4xx status; anything else propagates for the transport
// layer to convert into a generic server error.
func (o *Orchestrator) Handle(ctx context.Context, q model.Query) (model.FinalAnswer, error) {
	if q.Text == "" {
		return model.FinalAnswer{}, errx.BadRequest(errx.MissingQueryMessage)
	}
	sessionID := q.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	// LoadHistory: a failed read degrades to an empty history rather than
	// failing the request; the log keeps the evidence.
	history, err := o.memory.Recent(ctx, sessionID)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("History load failed; continuing with empty history")
		history = nil
	}

	decision, err := o.router.Route(ctx, q.Text)
	if err != nil {
		return model.FinalAnswer{}, err
	}

	// InvokeTool runs for everything except an explicit no-tool decision.
	// Invalid tool values still go through the invoker, which rejects them
	// without a downstream call.
	var toolResult model.ToolResult
	if decision.Tool != model.ToolNone {
		args := map[string]any{}
		if decision.Tool.Routable() {
			args = o.extractor.Extract(ctx, q.Text, decision.Tool)
		}
		toolResult = o.invoker.Invoke(ctx, decision.Tool, args, q.Text)
	}

	answer, err := o.synth.Generate(ctx, q.Text, toolResult, history)
	if err != nil {
		return model.FinalAnswer{}, err
	}

	// PersistTurn is best-effort: the answer exists either way, and the
	// store is conversational memory, not a ledger.
	if err := o.memory.SaveTurn(ctx, sessionID, q.Text, answer); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("Failed to persist conversation turn")
	}

	toolUsed := decision.Tool
	if toolUsed == model.ToolNone {
		toolUsed = ""
	}

	return model.FinalAnswer{
		Text:       answer,
		ToolUsed:   toolUsed,
		Confidence: decision.Confidence,
	}, nil
}
