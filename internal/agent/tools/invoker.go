package tools

import (
	"context"
	"encoding/json"
	"time"

	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/northstar-insurance/server/internal/agent/model"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// Error reasons surfaced to the synthesizer as ToolResult error markers.
const (
	ReasonInvalidTool       = "invalid tool"
	ReasonDownstreamService = "downstream service error"
	ReasonExecutionFailed   = "downstream function execution failed"
	ReasonInvalidResponse   = "invalid downstream response format"
)

// Invoker performs one downstream tool call and classifies the outcome.
// Failures come back as error-marked ToolResults, never as Go errors: a
// failed tool is something the synthesizer explains, not something that
// aborts the cycle.
type Invoker interface {
	Invoke(ctx context.Context, tool model.ToolName, args map[string]any, query string) model.ToolResult
}

// LambdaAPI is the slice of the Lambda client the invoker uses.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// LambdaInvoker calls deployed tool functions synchronously. One attempt per
// call; transient failures surface as error results.
type LambdaInvoker struct {
	client   LambdaAPI
	registry *Registry
}

func NewLambdaInvoker(client LambdaAPI, registry *Registry) *LambdaInvoker {
	return &LambdaInvoker{client: client, registry: registry}
}

func (inv *LambdaInvoker) Invoke(ctx context.Context, tool model.ToolName, args map[string]any, query string) model.ToolResult {
	spec, ok := inv.registry.Lookup(tool)
	if !ok {
		logx.Warn().Str("tool", string(tool)).Msg("Unknown tool requested; skipping downstream call")
		return model.ErrorResult(ReasonInvalidTool)
	}

	payload, err := json.Marshal(invocationPayload(args, query))
	if err != nil {
		return model.ErrorResult(ReasonInvalidResponse)
	}

	start := time.Now()
	out, err := inv.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: &spec.Function,
		Payload:      payload,
	})
	latency := time.Since(start)
	if err != nil {
		logx.Error().Err(err).Str("function", spec.Function).Dur("latency", latency).Msg("Downstream call failed")
		return model.ErrorResult(ReasonDownstreamService)
	}

	logx.Debug().Str("function", spec.Function).Dur("latency", latency).Msg("Tool invoked")

	if out.StatusCode < 200 || out.StatusCode > 299 {
		logx.Warn().Str("function", spec.Function).Int32("status", out.StatusCode).Msg("Downstream returned non-success status")
		return model.ErrorResult(ReasonDownstreamService)
	}
	if out.FunctionError != nil {
		logx.Warn().Str("function", spec.Function).Str("function_error", *out.FunctionError).Msg("Downstream reported execution fault")
		return model.ErrorResult(ReasonExecutionFailed)
	}

	return classifyPayload(out.Payload)
}

// invocationPayload prefers extracted arguments and falls back to the raw
// query when extraction produced nothing usable.
func invocationPayload(args map[string]any, query string) map[string]any {
	if len(args) > 0 {
		return args
	}
	return map[string]any{"query": query}
}

// classifyPayload normalises the heterogeneous response envelopes the tool
// functions produce: either a direct JSON payload or a generic envelope with
// a "body" field holding a secondary JSON-or-plain-text payload.
func classifyPayload(payload []byte) model.ToolResult {
	var outer map[string]any
	if err := json.Unmarshal(payload, &outer); err != nil {
		return model.ErrorResult(ReasonInvalidResponse)
	}

	body, ok := outer["body"]
	if !ok {
		return model.ToolResult(outer)
	}

	text, ok := body.(string)
	if !ok {
		return model.ErrorResult(ReasonInvalidResponse)
	}

	var inner map[string]any
	if err := json.Unmarshal([]byte(text), &inner); err != nil {
		// plain-text body: keep it, but as data rather than an envelope
		return model.ToolResult{"message": text}
	}
	return model.ToolResult(inner)
}

var _ Invoker = (*LambdaInvoker)(nil)
