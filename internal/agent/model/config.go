package model

// ================ Config ================

// RouterModelConfig drives the tool-selection stage. The primary model runs
// at temperature 0; the fallback is tried once when the primary invocation
// fails, and the escalation model re-runs low-confidence decisions.
type RouterModelConfig struct {
	Model           string `envconfig:"ROUTER_MODEL" default:"anthropic.claude-3-haiku-20240307-v1:0"`
	FallbackModel   string `envconfig:"ROUTER_FALLBACK_MODEL" default:"amazon.titan-text-express-v1"`
	EscalationModel string `envconfig:"ROUTER_ESCALATION_MODEL" default:"anthropic.claude-3-5-sonnet-20240620-v1:0"`
	MaxTokens       int    `envconfig:"ROUTER_MAX_TOKENS" default:"500"`
}

type ExtractorModelConfig struct {
	Model     string `envconfig:"EXTRACTOR_MODEL" default:"anthropic.claude-3-haiku-20240307-v1:0"`
	MaxTokens int    `envconfig:"EXTRACTOR_MAX_TOKENS" default:"500"`
}

type SynthesisModelConfig struct {
	Model         string  `envconfig:"SYNTHESIS_MODEL" default:"anthropic.claude-3-5-sonnet-20240620-v1:0"`
	FallbackModel string  `envconfig:"SYNTHESIS_FALLBACK_MODEL" default:"anthropic.claude-3-haiku-20240307-v1:0"`
	MaxTokens     int     `envconfig:"SYNTHESIS_MAX_TOKENS" default:"1000"`
	Temperature   float32 `envconfig:"SYNTHESIS_TEMPERATURE" default:"0.4"`
}

type EmbeddingConfig struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"amazon.titan-embed-text-v2:0"`
}

type RetrieverConfig struct {
	Endpoint       string `envconfig:"OPENSEARCH_ENDPOINT"`
	Index          string `envconfig:"RAG_INDEX" default:"insurance-rag"`
	TopK           int    `envconfig:"RETRIEVER_TOP_K" default:"5"`
	TimeoutSeconds int    `envconfig:"RETRIEVER_TIMEOUT_SECONDS" default:"5"`
}

type ConversationConfig struct {
	// Store selects the conversation repository backend.
	Store string `envconfig:"CONVERSATION_STORE" default:"redis"`
	Table string `envconfig:"CONVERSATION_TABLE" default:"northstar-conversations"`
	TTL   string `envconfig:"CONVERSATION_TTL" default:"720h"`
	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"5"`
	}
}

// ToolsConfig maps each tool to its downstream function identifier. Mode
// "local" serves the tools in-process from the S3 dataset instead of
// invoking deployed functions.
type ToolsConfig struct {
	Mode             string `envconfig:"TOOLS_MODE" default:"local"`
	PolicyFunction   string `envconfig:"GET_POLICY_FUNCTION" default:"get-policy-details"`
	ClaimFunction    string `envconfig:"GET_CLAIM_FUNCTION" default:"get-claim-status"`
	DocumentFunction string `envconfig:"CHECK_DOCUMENT_FUNCTION" default:"check-document-requirements"`
}

// DatasetConfig locates the reference data the local tool services read.
type DatasetConfig struct {
	Bucket          string `envconfig:"AWS_S3_BUCKET_NAME"`
	DataPrefix      string `envconfig:"AWS_INSURANCE_DATA" default:"data"`
	ClaimsPrefix    string `envconfig:"AWS_CLAIMS_DATA" default:"claims"`
	CacheSize       int    `envconfig:"DATASET_CACHE_SIZE" default:"64"`
	CacheTTLMinutes int    `envconfig:"DATASET_CACHE_TTL_MINUTES" default:"15"`
}

// GatewayConfig selects the generative backend. Bedrock is the default;
// gemini is available when an API key is configured.
type GatewayConfig struct {
	Provider      string `envconfig:"LLM_PROVIDER" default:"bedrock"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
}
