package tools

import (
	"context"
	"time"

	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/tools/services"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// LocalInvoker serves the tool functions in-process from the S3 dataset.
// Same contract as the Lambda path: unknown tools short-circuit, failures
// come back as error results.
type LocalInvoker struct {
	registry *Registry
	handlers *services.Handlers
}

func NewLocalInvoker(registry *Registry, handlers *services.Handlers) *LocalInvoker {
	return &LocalInvoker{registry: registry, handlers: handlers}
}

func (inv *LocalInvoker) Invoke(ctx context.Context, tool model.ToolName, args map[string]any, query string) model.ToolResult {
	spec, ok := inv.registry.Lookup(tool)
	if !ok {
		logx.Warn().Str("tool", string(tool)).Msg("Unknown tool requested; skipping local call")
		return model.ErrorResult(ReasonInvalidTool)
	}

	payload := invocationPayload(args, query)

	start := time.Now()
	var result model.ToolResult
	switch tool {
	case model.ToolPolicyLookup:
		result = inv.handlers.PolicyDetails(ctx, payload)
	case model.ToolClaimStatus:
		result = inv.handlers.ClaimStatus(ctx, payload)
	case model.ToolDocumentCheck:
		result = inv.handlers.CheckDocuments(ctx, payload)
	default:
		result = model.ErrorResult(ReasonInvalidTool)
	}

	logx.Debug().Str("function", spec.Function).Dur("latency", time.Since(start)).Msg("Tool invoked")
	return result
}

var _ Invoker = (*LocalInvoker)(nil)
