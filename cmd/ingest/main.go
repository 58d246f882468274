package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/northstar-insurance/server/internal/agent/llm"
	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/ingest"
	"github.com/northstar-insurance/server/pkg/awsx"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// IngestConfig carries everything the indexing pipeline needs.
type IngestConfig struct {
	AWS       awsx.Config
	Embedding model.EmbeddingConfig
	Retriever model.RetrieverConfig
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: ingest <file.pdf> [file.pdf ...]")
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg IngestConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init()

	ctx := context.Background()
	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	embedder := llm.NewTitanEmbedder(bedrockruntime.NewFromConfig(awsCfg), cfg.Embedding.Model)
	indexer := ingest.NewIndexer(embedder, cfg.Retriever)

	total := 0
	failed := false
	for _, path := range flag.Args() {
		n, err := indexer.IndexFile(ctx, path)
		total += n
		if err != nil {
			logx.Error().Err(err).Str("file", path).Msg("Failed to index document")
			failed = true
		}
	}

	logx.Info().Int("chunks", total).Msg("Ingestion finished")
	if failed {
		os.Exit(1)
	}
}
