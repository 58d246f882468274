package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/northstar-insurance/server/internal/core/error"
)

type fakeBedrock struct {
	body []byte
	err  error

	modelID string
	request []byte
}

func (f *fakeBedrock) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.modelID = aws.ToString(params.ModelId)
	f.request = params.Body
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func TestInvokeAnthropicModel(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"content": [{"text": "the answer"}]}`)}
	gw := NewBedrockGateway(client)

	text, err := gw.Invoke(context.Background(), "anthropic.claude-3-haiku-20240307-v1:0", "the prompt", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, "the answer", text)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", client.modelID)

	var req map[string]any
	require.NoError(t, json.Unmarshal(client.request, &req))
	assert.Equal(t, "bedrock-2023-05-31", req["anthropic_version"])
	assert.EqualValues(t, 500, req["max_tokens"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "the prompt", msgs[0].(map[string]any)["content"])
}

func TestInvokeTitanModel(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"results": [{"outputText": "titan answer"}]}`)}
	gw := NewBedrockGateway(client)

	text, err := gw.Invoke(context.Background(), "amazon.titan-text-express-v1", "the prompt", 0.4, 1000)
	require.NoError(t, err)
	assert.Equal(t, "titan answer", text)

	var req map[string]any
	require.NoError(t, json.Unmarshal(client.request, &req))
	assert.Equal(t, "the prompt", req["inputText"])
	genCfg := req["textGenerationConfig"].(map[string]any)
	assert.EqualValues(t, 1000, genCfg["maxTokenCount"])
}

func TestInvokeUnsupportedFamily(t *testing.T) {
	gw := NewBedrockGateway(&fakeBedrock{})

	_, err := gw.Invoke(context.Background(), "cohere.command-text-v14", "prompt", 0, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model family")
}

func TestInvokeFailureWrapsModelInvocation(t *testing.T) {
	client := &fakeBedrock{err: errors.New("throttled")}
	gw := NewBedrockGateway(client)

	_, err := gw.Invoke(context.Background(), "anthropic.claude-3-haiku-20240307-v1:0", "prompt", 0, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrModelInvocation))
}

func TestInvokeEmptyContentWrapsModelInvocation(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"content": []}`)}
	gw := NewBedrockGateway(client)

	_, err := gw.Invoke(context.Background(), "anthropic.claude-3-haiku-20240307-v1:0", "prompt", 0, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrModelInvocation))
}

func TestEmbed(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"embedding": [0.1, 0.2, 0.3]}`)}
	e := NewTitanEmbedder(client, "amazon.titan-embed-text-v2:0")

	vector, err := e.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "amazon.titan-embed-text-v2:0", client.modelID)

	var req map[string]string
	require.NoError(t, json.Unmarshal(client.request, &req))
	assert.Equal(t, "some text", req["inputText"])
}

func TestEmbedEmptyVector(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"embedding": []}`)}
	e := NewTitanEmbedder(client, "amazon.titan-embed-text-v2:0")

	_, err := e.Embed(context.Background(), "some text")
	require.Error(t, err)
}

func TestModelFamily(t *testing.T) {
	assert.Equal(t, "anthropic", modelFamily("anthropic.claude-3-haiku-20240307-v1:0"))
	assert.Equal(t, "amazon", modelFamily("amazon.titan-text-express-v1"))
	assert.Equal(t, "bare", modelFamily("bare"))
}
