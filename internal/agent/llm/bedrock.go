package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// BedrockAPI is the slice of the Bedrock runtime client the gateway uses.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockGateway invokes foundation models through the Bedrock runtime with
// AWS Signature V4 authentication. Request and response bodies differ per
// model family, so they are built and parsed by modelID prefix.
type BedrockGateway struct {
	client BedrockAPI
}

func NewBedrockGateway(client BedrockAPI) *BedrockGateway {
	return &BedrockGateway{client: client}
}

func (g *BedrockGateway) Invoke(ctx context.Context, modelID, prompt string, temperature float32, maxTokens int) (string, error) {
	body, err := buildRequestBody(modelID, prompt, temperature, maxTokens)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	start := time.Now()
	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        payload,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	latency := time.Since(start)
	if err != nil {
		logx.Error().Err(err).Str("model_id", modelID).Dur("latency", latency).Msg("Bedrock invocation failed")
		return "", errx.WrapModel(modelID, err)
	}

	logx.Debug().Str("model_id", modelID).Dur("latency", latency).Msg("Model invoked")

	text, err := parseResponseBody(modelID, out.Body)
	if err != nil {
		return "", errx.WrapModel(modelID, err)
	}
	return text, nil
}

func modelFamily(modelID string) string {
	if i := strings.Index(modelID, "."); i > 0 {
		return modelID[:i]
	}
	return modelID
}

func buildRequestBody(modelID, prompt string, temperature float32, maxTokens int) (map[string]any, error) {
	switch modelFamily(modelID) {
	case "anthropic":
		return map[string]any{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        maxTokens,
			"temperature":       temperature,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}, nil
	case "amazon":
		return map[string]any{
			"inputText": prompt,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": maxTokens,
				"temperature":   temperature,
				"topP":          0.9,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported model family: %s", modelFamily(modelID))
	}
}

func parseResponseBody(modelID string, body []byte) (string, error) {
	switch modelFamily(modelID) {
	case "anthropic":
		var resp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parse anthropic response: %w", err)
		}
		if len(resp.Content) == 0 {
			return "", fmt.Errorf("anthropic response carried no content")
		}
		return resp.Content[0].Text, nil
	case "amazon":
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parse titan response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", fmt.Errorf("titan response carried no results")
		}
		return resp.Results[0].OutputText, nil
	default:
		return "", fmt.Errorf("unsupported model family: %s", modelFamily(modelID))
	}
}

var _ Gateway = (*BedrockGateway)(nil)
