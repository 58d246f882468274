package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ledongthuc/pdf"

	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// Chunking geometry for indexed passages.
const (
	ChunkSize    = 1000
	ChunkOverlap = 150
)

// Metadata travels with each indexed chunk.
type Metadata struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

type document struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Metadata  Metadata  `json:"metadata"`
}

// Indexer embeds text chunks and writes them into the OpenSearch index the
// retriever searches.
type Indexer struct {
	embedder llm.Embedder
	http     *resty.Client
	index    string
}

func NewIndexer(embedder llm.Embedder, cfg model.RetrieverConfig) *Indexer {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")
	return &Indexer{embedder: embedder, http: client, index: cfg.Index}
}

// IndexFile extracts a PDF's text, chunks it, and indexes every chunk.
// Returns the number of chunks written.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	text, err := ExtractPDFText(path)
	if err != nil {
		return 0, err
	}
	if text == "" {
		logx.Warn().Str("file", path).Msg("Document produced no text; skipping")
		return 0, nil
	}

	chunks := ChunkText(text, ChunkSize, ChunkOverlap)
	for i, chunk := range chunks {
		if err := ix.indexChunk(ctx, chunk, Metadata{Source: path, ChunkIndex: i}); err != nil {
			return i, fmt.Errorf("index chunk %d of %s: %w", i, path, err)
		}
	}

	logx.Info().Str("file", path).Int("chunks", len(chunks)).Msg("Document indexed")
	return len(chunks), nil
}

func (ix *Indexer) indexChunk(ctx context.Context, text string, meta Metadata) error {
	vector, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}

	resp, err := ix.http.R().
		SetContext(ctx).
		SetBody(document{Text: text, Embedding: vector, Metadata: meta}).
		Post(fmt.Sprintf("/%s/_doc", ix.index))
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("indexing failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// ExtractPDFText pulls the plain text out of a PDF file.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}

// ChunkText slices text into fixed-size chunks with the given overlap.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
