package main

import (
	"context"
	"flag"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/northstar-insurance/server/internal/agent/model"
	"github.com/northstar-insurance/server/internal/seed"
	"github.com/northstar-insurance/server/pkg/awsx"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// SeedConfig locates the dataset bucket the generator writes into.
type SeedConfig struct {
	AWS     awsx.Config
	Dataset model.DatasetConfig
}

func main() {
	randSeed := flag.Int64("seed", 42, "random seed for the generated dataset")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg SeedConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init()

	if cfg.Dataset.Bucket == "" {
		logx.Fatal().Msg("AWS_S3_BUCKET_NAME must be set")
	}

	ctx := context.Background()
	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg)
	if err := seed.Upload(ctx, client, cfg.Dataset, seed.NewGenerator(*randSeed)); err != nil {
		logx.Fatal().Err(err).Msg("Failed to upload dataset")
	}
}
