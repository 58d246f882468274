package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/northstar-insurance/server/internal/agent/model"
)

//go:embed template/router_prompt.txt
var routerPrompt string

//go:embed template/extractor_prompt.txt
var extractorPrompt string

//go:embed template/synthesis_prompt.txt
var synthesisPrompt string

// RenderRouter renders the tool-selection prompt. Known tokens are replaced
// up front so the JSON shape example in the template survives formatting,
// then the result passes through the eino prompt component to emit prompt
// callbacks.
func RenderRouter(ctx context.Context, query string) (string, error) {
	content := strings.NewReplacer(
		"{query}", query,
	).Replace(routerPrompt)
	return renderLiteral(ctx, content, "router")
}

// RenderExtractor renders the argument-extraction prompt for one tool.
func RenderExtractor(ctx context.Context, tool model.ToolName, params []string, query string) (string, error) {
	var list strings.Builder
	for _, p := range params {
		list.WriteString("- " + p + "\n")
	}
	content := strings.NewReplacer(
		"{tool}", string(tool),
		"{params}", strings.TrimRight(list.String(), "\n"),
		"{query}", query,
	).Replace(extractorPrompt)
	return renderLiteral(ctx, content, "extractor")
}

// SynthesisVars carries the evidence the synthesis prompt may expose to the
// model.
type SynthesisVars struct {
	Question string
	ToolData model.ToolResult
	Passages []string
	History  []model.ConversationTurn
	Fallback string
}

// RenderSynthesis renders the grounded-answer prompt via the eino Go
// template component.
func RenderSynthesis(ctx context.Context, vars SynthesisVars) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(synthesisPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Question": vars.Question,
		"ToolData": renderToolData(vars.ToolData),
		"Passages": renderPassages(vars.Passages),
		"History":  renderHistory(vars.History),
		"Fallback": vars.Fallback,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("synthesis prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// renderLiteral wraps already-substituted content in a messages placeholder
// so prompt callbacks still fire without re-formatting the JSON braces.
func renderLiteral(ctx context.Context, content, name string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("%s prompt callbacks: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("%s prompt callbacks: empty result", name)
	}
	return msgs[0].Content, nil
}

func renderToolData(result model.ToolResult) string {
	if result.Empty() {
		return "(no tool data)"
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "(no tool data)"
	}
	return string(b)
}

func renderPassages(passages []string) string {
	if len(passages) == 0 {
		return "(no reference passages)"
	}
	var sb strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, strings.TrimSpace(p))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderHistory(turns []model.ConversationTurn) string {
	if len(turns) == 0 {
		return "(no prior turns)"
	}
	// turns arrive most-recent-first; render oldest-first for readability
	var sb strings.Builder
	for i := len(turns) - 1; i >= 0; i-- {
		sb.WriteString("Customer: " + turns[i].UserText + "\n")
		sb.WriteString("Assistant: " + turns[i].AssistantText + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
