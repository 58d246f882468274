package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-insurance/server/internal/agent/model"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("a", 2000)

	chunks := ChunkText(text, 1000, 150)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 300)
}

func TestChunkTextOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; sb.Len() < 2000; i++ {
		sb.WriteString("sentence ")
	}
	text := sb.String()

	chunks := ChunkText(text, 1000, 150)
	require.GreaterOrEqual(t, len(chunks), 2)

	// each chunk starts with the tail of its predecessor
	assert.Equal(t, chunks[0][850:], chunks[1][:150])
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("short document", 1000, 150)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short document", chunks[0])
}

func TestChunkTextInvalidGeometry(t *testing.T) {
	assert.Nil(t, ChunkText("text", 0, 0))
	assert.Nil(t, ChunkText("text", 100, 100))
	assert.Nil(t, ChunkText("text", 100, -1))
	assert.Nil(t, ChunkText("", 1000, 150))
}

func TestIndexChunkRequestShape(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/insurance-rag/_doc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ix := NewIndexer(&fakeEmbedder{}, model.RetrieverConfig{
		Endpoint:       srv.URL,
		Index:          "insurance-rag",
		TimeoutSeconds: 2,
	})

	err := ix.indexChunk(context.Background(), "a policy clause", Metadata{Source: "handbook.pdf", ChunkIndex: 3})
	require.NoError(t, err)

	assert.Equal(t, "a policy clause", captured["text"])
	assert.Len(t, captured["embedding"], 3)
	meta := captured["metadata"].(map[string]any)
	assert.Equal(t, "handbook.pdf", meta["source"])
	assert.EqualValues(t, 3, meta["chunk_index"])
}

func TestIndexChunkSurfacesIndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "mapper_parsing_exception", http.StatusBadRequest)
	}))
	defer srv.Close()

	ix := NewIndexer(&fakeEmbedder{}, model.RetrieverConfig{Endpoint: srv.URL, Index: "insurance-rag", TimeoutSeconds: 2})

	err := ix.indexChunk(context.Background(), "text", Metadata{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
