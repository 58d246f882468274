package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/northstar-insurance/server/internal/agent/model"
	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// GeminiGateway serves the Gateway contract through Google Gemini models.
// The genai client is shared; a chat model is composed per invocation since
// the gateway takes model and temperature per call.
type GeminiGateway struct {
	client *genai.Client
}

func NewGeminiGateway(ctx context.Context, cfg model.GatewayConfig) (*GeminiGateway, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.GeminiBaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return &GeminiGateway{client: client}, nil
}

func (g *GeminiGateway) Invoke(ctx context.Context, modelID, prompt string, temperature float32, maxTokens int) (string, error) {
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      g.client,
		Model:       modelID,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", errx.WrapModel(modelID, err)
	}

	start := time.Now()
	out, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	latency := time.Since(start)
	if err != nil {
		logx.Error().Err(err).Str("model_id", modelID).Dur("latency", latency).Msg("Gemini invocation failed")
		return "", errx.WrapModel(modelID, err)
	}

	logx.Debug().Str("model_id", modelID).Dur("latency", latency).Msg("Model invoked")

	if out == nil {
		return "", errx.WrapModel(modelID, fmt.Errorf("empty response"))
	}
	return out.Content, nil
}

var _ Gateway = (*GeminiGateway)(nil)
