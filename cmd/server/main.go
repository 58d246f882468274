package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/northstar-insurance/server/internal/agent/conversations"
	"github.com/northstar-insurance/server/internal/agent/extractor"
	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/agent/orchestrator"
	"github.com/northstar-insurance/server/internal/agent/repo"
	"github.com/northstar-insurance/server/internal/agent/retriever"
	"github.com/northstar-insurance/server/internal/agent/router"
	"github.com/northstar-insurance/server/internal/agent/synthesizer"
	"github.com/northstar-insurance/server/internal/agent/tools"
	"github.com/northstar-insurance/server/internal/agent/tools/services"
	"github.com/northstar-insurance/server/internal/core"
	"github.com/northstar-insurance/server/internal/httpapi"
	"github.com/northstar-insurance/server/pkg/awsx"
	logx "github.com/northstar-insurance/server/pkg/logger"
	pkgredis "github.com/northstar-insurance/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// Infrastructure
	AWS   awsx.Config
	Redis pkgredis.Config

	// LLM backends
	Gateway   model.GatewayConfig
	Embedding model.EmbeddingConfig

	// Agent configs
	Router       model.RouterModelConfig
	Extractor    model.ExtractorModelConfig
	Synthesis    model.SynthesisModelConfig
	Retriever    model.RetrieverConfig
	Conversation model.ConversationConfig
	Tools        model.ToolsConfig
	Dataset      model.DatasetConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	bedrock := bedrockruntime.NewFromConfig(awsCfg)

	gateway, err := buildGateway(ctx, cfg, bedrock)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build model gateway")
	}
	embedder := llm.NewTitanEmbedder(bedrock, cfg.Embedding.Model)

	memory, err := buildMemory(cfg, awsCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build conversation store")
	}

	registry := tools.NewRegistry(cfg.Tools)
	invoker := buildInvoker(cfg, registry, awsCfg)

	ret := retriever.New(embedder, cfg.Retriever)
	orch := orchestrator.New(
		router.New(gateway, cfg.Router),
		extractor.New(gateway, registry, cfg.Extractor),
		invoker,
		synthesizer.New(gateway, ret, cfg.Synthesis),
		memory,
	)

	server := httpapi.NewServer(orch)
	logx.Info().Str("addr", cfg.HTTPAddr).Str("environment", env.String()).Msg("Agent service listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, server.Handler()); err != nil {
		logx.Fatal().Err(err).Msg("HTTP server stopped")
	}
}

func buildGateway(ctx context.Context, cfg AppConfig, bedrock *bedrockruntime.Client) (llm.Gateway, error) {
	switch cfg.Gateway.Provider {
	case "gemini":
		return llm.NewGeminiGateway(ctx, cfg.Gateway)
	case "bedrock":
		return llm.NewBedrockGateway(bedrock), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Gateway.Provider)
	}
}

func buildMemory(cfg AppConfig, awsCfg aws.Config) (*conversations.Manager, error) {
	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", cfg.Conversation.TTL, err)
	}

	var store model.ConversationRepository
	switch cfg.Conversation.Store {
	case "dynamo":
		store = repo.NewDynamoConversationRepository(dynamodb.NewFromConfig(awsCfg), cfg.Conversation.Table)
	case "redis":
		rdb, err := cfg.Redis.New()
		if err != nil {
			return nil, fmt.Errorf("initialise Redis client: %w", err)
		}
		store = repo.NewRedisConversationRepository(rdb, ttl)
	default:
		return nil, fmt.Errorf("unknown conversation store %q", cfg.Conversation.Store)
	}

	return conversations.NewManager(store, cfg.Conversation), nil
}

func buildInvoker(cfg AppConfig, registry *tools.Registry, awsCfg aws.Config) tools.Invoker {
	if cfg.Tools.Mode == "lambda" {
		return tools.NewLambdaInvoker(awslambda.NewFromConfig(awsCfg), registry)
	}
	dataset := services.NewDataset(s3.NewFromConfig(awsCfg), cfg.Dataset)
	return tools.NewLocalInvoker(registry, services.NewHandlers(dataset))
}
