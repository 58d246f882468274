package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// knnRequest is the OpenSearch k-NN search body:
// { size, query: { knn: { embedding: { vector, k } } } }.
type knnRequest struct {
	Size  int `json:"size"`
	Query struct {
		KNN struct {
			Embedding struct {
				Vector []float32 `json:"vector"`
				K      int       `json:"k"`
			} `json:"embedding"`
		} `json:"knn"`
	} `json:"query"`
}

type knnResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				Text string `json:"text"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Retriever embeds a query and runs a nearest-neighbour search over the
// indexed document store. Retrieval failure is never fatal: every failure
// path logs and returns an empty passage set, degrading the evidence
// available to synthesis.
type Retriever struct {
	embedder llm.Embedder
	http     *resty.Client
	index    string
	topK     int
}

func New(embedder llm.Embedder, cfg model.RetrieverConfig) *Retriever {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")
	return &Retriever{
		embedder: embedder,
		http:     client,
		index:    cfg.Index,
		topK:     cfg.TopK,
	}
}

// Retrieve returns up to topK passage texts ranked by vector similarity.
// A topK of 0 uses the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []string {
	if topK <= 0 {
		topK = r.topK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logx.Warn().Err(err).Msg("Query embedding failed; returning empty context")
		return nil
	}

	var req knnRequest
	req.Size = topK
	req.Query.KNN.Embedding.Vector = vector
	req.Query.KNN.Embedding.K = topK

	var result knnResponse
	start := time.Now()
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(fmt.Sprintf("/%s/_search", r.index))
	latency := time.Since(start)
	if err != nil {
		logx.Warn().Err(err).Dur("latency", latency).Msg("Vector search failed; returning empty context")
		return nil
	}
	if resp.IsError() {
		logx.Warn().Int("status", resp.StatusCode()).Dur("latency", latency).Msg("Vector search returned non-success; returning empty context")
		return nil
	}

	passages := make([]string, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if hit.Source.Text != "" {
			passages = append(passages, hit.Source.Text)
		}
	}

	logx.Debug().Int("passages", len(passages)).Dur("latency", latency).Msg("Context retrieved")
	return passages
}
