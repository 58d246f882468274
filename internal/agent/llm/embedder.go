package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	logx "github.com/northstar-insurance/server/pkg/logger"
)

// TitanEmbedder produces query and document embeddings via the Titan
// embedding model. Request and response shapes follow the Titan contract:
// {"inputText": ...} in, {"embedding": [...]} out.
type TitanEmbedder struct {
	client BedrockAPI
	model  string
}

func NewTitanEmbedder(client BedrockAPI, model string) *TitanEmbedder {
	return &TitanEmbedder{client: client, model: model}
}

func (e *TitanEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]string{"inputText": text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	start := time.Now()
	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.model),
		Body:        payload,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		logx.Error().Err(err).Str("model_id", e.model).Msg("Embedding invocation failed")
		return nil, fmt.Errorf("embed text: %w", err)
	}

	var resp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response carried no vector")
	}

	logx.Debug().Str("model_id", e.model).Dur("latency", time.Since(start)).Int("dims", len(resp.Embedding)).Msg("Text embedded")
	return resp.Embedding, nil
}

var _ Embedder = (*TitanEmbedder)(nil)
